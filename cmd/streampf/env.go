package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const envPrefix = "STREAMPF_"

// loadEnvFile loads the variables in path into the environment. Variables
// that are already set are not overridden. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	return nil
}

// envName returns the environment variable that can set a flag, for example
// STREAMPF_NUM_STREAMS for --num-streams.
func envName(flagName string) string {
	return envPrefix +
		strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

// applyEnv sets the flags that are not given on the command line from the
// environment.
func applyEnv(flags *pflag.FlagSet) error {
	var errs []error

	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed || f.Name == "help" {
			return
		}

		value, ok := os.LookupEnv(envName(f.Name))
		if !ok {
			return
		}

		if err := flags.Set(f.Name, value); err != nil {
			errs = append(errs,
				fmt.Errorf("%s=%q: %w", envName(f.Name), value, err))
		}
	})

	return errors.Join(errs...)
}
