// Copyright 2026 OneOffTech
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	parxy "github.com/OneOffTech/parxy-sub000"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version is set by main from the build metadata.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "parxy",
	Short: "Parse documents through pluggable backends",
	Long: `Parxy parses documents through named backends (drivers) and normalizes
their output into one canonical, hierarchy-aware document model.

Configuration is read from flags, the config file and PARXY_* environment
variables, in that order of precedence.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.parxy.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-style", "console", "log style (console, json)")
	rootCmd.PersistentFlags().String("default-driver", parxy.FallbackDriverName, "driver used when none is named")
	rootCmd.PersistentFlags().String("pdfact-url", parxy.DefaultPdfactBaseURL, "pdfact service base URL")
	rootCmd.PersistentFlags().Duration("http-timeout", 2*time.Minute, "timeout for remote fetches and backend calls")

	mustBindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	mustBindPFlag("log.style", rootCmd.PersistentFlags().Lookup("log-style"))
	mustBindPFlag("default_driver", rootCmd.PersistentFlags().Lookup("default-driver"))
	mustBindPFlag("pdfact.base_url", rootCmd.PersistentFlags().Lookup("pdfact-url"))
	mustBindPFlag("http_timeout", rootCmd.PersistentFlags().Lookup("http-timeout"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigName(".parxy")
			viper.SetConfigType("yaml")
		}
	}

	viper.SetEnvPrefix("PARXY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "using config file:", viper.ConfigFileUsed())
	}
}

func mustBindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

// buildLogger creates the CLI logger from the log.* config keys.
func buildLogger() *zap.Logger {
	level, err := zapcore.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		level = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	if viper.GetString("log.style") == "console" {
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	cfg.OutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// buildFactory assembles a factory from the resolved configuration.
func buildFactory(logger *zap.Logger) *parxy.Factory {
	cfg := parxy.Config{
		DefaultDriver: viper.GetString("default_driver"),
		Workers:       viper.GetInt("workers"),
		CacheTTL:      viper.GetDuration("cache_ttl"),
		HTTPTimeout:   viper.GetDuration("http_timeout"),
		Pdfact: parxy.PdfactConfig{
			BaseURL: viper.GetString("pdfact.base_url"),
		},
	}
	return parxy.NewFactory(cfg,
		parxy.WithLogger(logger),
		parxy.WithTracer(parxy.NewTracer(logger)),
	)
}
