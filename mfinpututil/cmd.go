/*
Copyright © 2018 the InMAP authors.
This file is part of mfinput.

mfinput is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

mfinput is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with mfinput.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package mfinpututil contains the command-line interface for reading,
// converting, inspecting and generating stress-period package files.
package mfinpututil

import (
	"context"
	"fmt"
	"io"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/mfinput"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information and the commands that use it.
type Cfg struct {
	*viper.Viper

	Root, versionCmd, convertCmd, showCmd, summaryCmd, generateCmd *cobra.Command

	log *logrus.Logger
}

type option struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

// InitializeConfig creates the commands and binds their flags to a new
// configuration.
func InitializeConfig() *Cfg {
	cfg := &Cfg{
		Viper: viper.New(),
		log:   logrus.New(),
	}

	cfg.Root = &cobra.Command{
		Use:   "mfinput",
		Short: "A reader and writer for groundwater model stress-period packages.",
		Long: `mfinput reads, converts, inspects and generates the stress-period input
files of groundwater flow models: evapotranspiration (EVT), recharge (RCH),
well (WEL), multi-node well (MNW1) and flow-transport link (LMT) packages.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'MFINPUT_var' where 'var' is the
name of the variable to be set. File locations may contain environment variables
and may refer to cloud storage using the gs:// or s3:// prefixes.`,
		DisableAutoGenTag: true,
		PersistentPreRunE: func(*cobra.Command, []string) error { return cfg.setConfig() },
	}

	cfg.versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Long:  "version prints the version number of this version of mfinput.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mfinput v%s\n", mfinput.Version)
		},
		DisableAutoGenTag: true,
	}

	cfg.convertCmd = &cobra.Command{
		Use:   "convert",
		Short: "Read a package file and write it in canonical form.",
		Long: `convert reads the package file given by --input and writes it to --output.
Arrays are written as CONSTANT records where possible and as INTERNAL or
EXTERNAL records otherwise. If --nam is given, external units are resolved
using the name file, and the updated name file, including output units
registered by the package, is written to --namout if that is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cfg.convert(context.Background())
		},
		DisableAutoGenTag: true,
	}

	cfg.showCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the array of a quantity in one stress period.",
		Long: `show reads an EVT or RCH package file and prints the array in effect for
--quantity during the one-based stress period --period.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cfg.show(context.Background(), cmd.OutOrStdout())
		},
		DisableAutoGenTag: true,
	}

	cfg.summaryCmd = &cobra.Command{
		Use:   "summary",
		Short: "Summarize the stress-period data of a package file.",
		Long: `summary reads an EVT or RCH package file and prints, for each quantity and
stress period, whether the period supplies new data or reuses earlier data,
together with a fingerprint of the array in effect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cfg.summary(context.Background(), cmd.OutOrStdout())
		},
		DisableAutoGenTag: true,
	}

	cfg.generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Create a package file from a TOML description.",
		Long: `generate creates an EVT or RCH package file from the TOML description given
by --spec and writes it to --output. See GenerateSpec for the format.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cfg.generate(context.Background())
		},
		DisableAutoGenTag: true,
	}

	cfg.Root.AddCommand(cfg.versionCmd, cfg.convertCmd, cfg.showCmd, cfg.summaryCmd, cfg.generateCmd)

	readers := []*pflag.FlagSet{cfg.convertCmd.Flags(), cfg.showCmd.Flags(), cfg.summaryCmd.Flags()}

	options := []option{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "verbose",
			usage: `
              verbose specifies whether to log progress messages.`,
			shorthand:  "v",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "package",
			usage: `
              package specifies the type of the package file: EVT, RCH,
              WEL, MNW1 or LMT.`,
			shorthand:  "p",
			defaultVal: "EVT",
			flagsets:   readers,
		},
		{
			name: "input",
			usage: `
              input specifies the location of the package file to read.`,
			shorthand:  "i",
			defaultVal: "",
			flagsets:   readers,
		},
		{
			name: "output",
			usage: `
              output specifies the location of the package file to write.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.convertCmd.Flags(), cfg.generateCmd.Flags()},
		},
		{
			name: "nam",
			usage: `
              nam specifies the location of the name file used to resolve
              external file units. If it is empty, external units cannot be
              read.`,
			defaultVal: "",
			flagsets:   readers,
		},
		{
			name: "namout",
			usage: `
              namout specifies where to write the updated name file after
              conversion. If it is empty, no name file is written.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.convertCmd.Flags()},
		},
		{
			name: "unit",
			usage: `
              unit specifies the file unit of the package file. Old-style
              array control records that refer to it are read from the
              package file itself. If it is zero, the unit is looked up in
              the name file or the package's default unit is used.`,
			defaultVal: 0,
			flagsets:   readers,
		},
		{
			name: "Grid.Nrow",
			usage: `
              Grid.Nrow specifies the number of grid rows.`,
			defaultVal: 1,
			flagsets:   readers,
		},
		{
			name: "Grid.Ncol",
			usage: `
              Grid.Ncol specifies the number of grid columns.`,
			defaultVal: 1,
			flagsets:   readers,
		},
		{
			name: "Grid.Nlay",
			usage: `
              Grid.Nlay specifies the number of grid layers.`,
			defaultVal: 1,
			flagsets:   readers,
		},
		{
			name: "Grid.Nper",
			usage: `
              Grid.Nper specifies the number of stress periods.`,
			defaultVal: 1,
			flagsets:   readers,
		},
		{
			name: "quantity",
			usage: `
              quantity specifies the quantity to show, e.g. "rech" or "surf".`,
			shorthand:  "q",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.showCmd.Flags()},
		},
		{
			name: "period",
			usage: `
              period specifies the one-based stress period to show.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{cfg.showCmd.Flags()},
		},
		{
			name: "quantities",
			usage: `
              quantities specifies the quantities to summarize. If it is
              empty, every active quantity is summarized.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{cfg.summaryCmd.Flags()},
		},
		{
			name: "spec",
			usage: `
              spec specifies the location of the TOML package description.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.generateCmd.Flags()},
		},
	}

	// Set the prefix for configuration environment variables.
	cfg.SetEnvPrefix("MFINPUT")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
	return cfg
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets the log level.
func (cfg *Cfg) setConfig() error {
	if cfgpath := cfg.GetString("config"); cfgpath != "" {
		cfg.SetConfigFile(cfgpath)
		if err := cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("mfinput: problem reading configuration file: %v", err)
		}
	}
	if cast.ToBool(cfg.Get("verbose")) {
		cfg.log.SetLevel(logrus.DebugLevel)
	} else {
		cfg.log.SetLevel(logrus.WarnLevel)
	}
	return nil
}

// SetLogOutput sets where log messages are written.
func (cfg *Cfg) SetLogOutput(w io.Writer) { cfg.log.Out = w }
