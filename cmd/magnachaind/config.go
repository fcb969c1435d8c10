package main

import (
	"fmt"

	flags "github.com/jessevdk/go-flags"
	"github.com/spf13/viper"
)

// cliOptions are the command-line overrides spec.md 4.J names, parsed with
// jessevdk/go-flags the way the teacher's config.go parses its daemon flags.
type cliOptions struct {
	ConfigFile string `short:"c" long:"configfile" description:"Path to config.yaml" default:"config/config.yaml"`
}

// daemonConfig is the fully-resolved daemon configuration: viper's YAML load
// overridden by nothing beyond -configfile itself (every other setting lives
// in the YAML file, the way Vigneshboobathy-dag_rte/cmd/main.go reads
// config/config.yaml).
type daemonConfig struct {
	DataDir    string
	ListenAddr string

	LogFile  string
	LogLevel string

	BranchId        string
	MainChainConfig string
	BranchConfigs   []string
}

func loadConfig() (*daemonConfig, error) {
	var opts cliOptions
	if _, err := flags.Parse(&opts); err != nil {
		return nil, err
	}

	viper.SetConfigFile(opts.ConfigFile)
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", opts.ConfigFile, err)
	}

	return &daemonConfig{
		DataDir:         viper.GetString("datadir"),
		ListenAddr:      viper.GetString("server.listen"),
		LogFile:         viper.GetString("log.file"),
		LogLevel:        viper.GetString("log.level"),
		BranchId:        viper.GetString("branchid"),
		MainChainConfig: viper.GetString("mainchaincfg"),
		BranchConfigs:   viper.GetStringSlice("branchcfg"),
	}, nil
}
