package main

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path"

	"github.com/dextrolabs/dextro/internal/file"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

type config struct {
	APIAddress string `json:"apiAddress"`
	APIToken   string `json:"apiToken"`
}

func getConfig() (*config, error) {
	dextroHome, err := getDextroHome()
	if err != nil {
		return nil, errors.Wrapf(err, "error finding dextro home")
	}
	dextroConfigFile := path.Join(dextroHome, "config")
	if !file.Exists(dextroConfigFile) {
		return nil, errors.Errorf(
			"no dextro configuration was found at %s; please use "+
				"`dextro login` to continue\n",
			dextroConfigFile,
		)
	}

	configBytes, err := ioutil.ReadFile(dextroConfigFile)
	if err != nil {
		return nil, errors.Wrapf(
			err,
			"error reading dextro config file at %s",
			dextroConfigFile,
		)
	}

	config := &config{}
	if err := json.Unmarshal(configBytes, config); err != nil {
		return nil, errors.Wrapf(
			err,
			"error parsing dextro config file at %s",
			dextroConfigFile,
		)
	}

	return config, nil
}

func saveConfig(config *config) error {
	dextroHome, err := getDextroHome()
	if err != nil {
		return errors.Wrapf(err, "error finding dextro home")
	}
	if _, err = os.Stat(dextroHome); err != nil {
		if !os.IsNotExist(err) {
			return errors.Wrapf(
				err,
				"error checking for existence of dextro home at %s",
				dextroHome,
			)
		}
		// The directory doesn't exist-- create it
		if err = os.MkdirAll(dextroHome, 0755); err != nil {
			return errors.Wrapf(
				err,
				"error creating dextro home at %s",
				dextroHome,
			)
		}
	}
	dextroConfigFile := path.Join(dextroHome, "config")

	configBytes, err := json.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "error marshaling config")
	}
	if err :=
		ioutil.WriteFile(dextroConfigFile, configBytes, 0600); err != nil {
		return errors.Wrapf(err, "error writing to %s", dextroConfigFile)
	}
	return nil
}

func deleteConfig() error {
	dextroHome, err := getDextroHome()
	if err != nil {
		return errors.Wrapf(err, "error finding dextro home")
	}
	dextroConfigFile := path.Join(dextroHome, "config")

	if err := os.Remove(dextroConfigFile); err != nil {
		return errors.Wrap(err, "error deleting configuration")
	}

	return nil
}

func getDextroHome() (string, error) {
	homeDir, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "error locating user's home directory")
	}

	return path.Join(homeDir, ".dextro"), nil
}
