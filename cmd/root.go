package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/FactomWyomingEntity/prosper-stake/config"
	"github.com/FactomWyomingEntity/prosper-stake/engine"
	"github.com/FactomWyomingEntity/prosper-stake/exit"
	"github.com/FactomWyomingEntity/prosper-stake/loghelp"
	"github.com/FactomWyomingEntity/prosper-stake/profile"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(version)
	rootCmd.PersistentFlags().StringP("config", "c", "", "config path location, defaults to $HOME/.prosper/prosper-stake.toml")
	rootCmd.PersistentFlags().String("log", "info", "Change the logging level. Can choose from 'trace', 'debug', 'info', 'warn', 'error', or 'fatal'")
	rootCmd.PersistentFlags().String("phost", "localhost", "Postgres host url")
	rootCmd.PersistentFlags().Int("pport", 5432, "Postgres host port")
	rootCmd.Flags().Int("port", 7070, "Port for the ledger api")
	rootCmd.Flags().Bool("profile", false, "Turn on profiling")
}

// Execute is cobra's entry point
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:              "prosper-stake",
	Short:            "Launch the staking ledger",
	PersistentPreRun: rootPreRunSetup,
	PreRun:           SoftReadConfig,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithCancel(context.Background())
		exit.GlobalExitHandler.AddCancel(cancel)

		if pro, _ := cmd.Flags().GetBool("profile"); pro {
			go profile.StartProfiler(viper.GetBool(config.ConfigProfileExpose), viper.GetInt(config.ConfigProfilePort))
		}

		e, err := engine.Setup(viper.GetViper())
		if err != nil {
			log.WithError(err).Fatal("failed to setup the ledger")
		}

		log.WithField("version", config.CompiledInVersion).Info("launching prosper-stake")
		e.Run(ctx)
		// Waits on a close already started by the signal handler
		exit.GlobalExitHandler.Close()
	},
}

var version = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(config.CompiledInVersion)
	},
}

// rootPreRunSetup is run before the root command
func rootPreRunSetup(cmd *cobra.Command, args []string) {
	// Catch ctl+c
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalChan
		log.Info("Gracefully closing")

		// We will give it 3 seconds to close gracefully.
		// If anything is hanging beyond that, just kill it.
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
		defer cancel()
		err := exit.GlobalExitHandler.CloseWithTimeout(ctx)
		if err != nil {
			log.Warn("took too long to close")
			os.Exit(1)
		}
		os.Exit(0)
	}()

	config.SetDefaults(viper.GetViper())
	_ = viper.BindPFlag(config.ConfigSQLHost, cmd.Flags().Lookup("phost"))
	_ = viper.BindPFlag(config.ConfigSQLPort, cmd.Flags().Lookup("pport"))
	_ = viper.BindPFlag(config.LoggingLevel, cmd.Flags().Lookup("log"))
	if port := cmd.Flags().Lookup("port"); port != nil {
		_ = viper.BindPFlag(config.ConfigWebPort, port)
	}
}

// SoftReadConfig will not fail. It can be used for a command that needs the config,
// but is happy with the defaults
func SoftReadConfig(cmd *cobra.Command, args []string) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = "$HOME/.prosper/prosper-stake.toml"
	}
	path := os.ExpandEnv(configPath)
	name := filepath.Base(path)
	viper.AddConfigPath(filepath.Dir(path))
	viper.SetConfigName(strings.TrimSuffix(name, filepath.Ext(name)))

	err := viper.ReadInConfig()
	if err != nil {
		log.WithError(err).Debugf("failed to load config")
	}

	initLogger()
}

func initLogger() {
	switch strings.ToLower(viper.GetString(config.LoggingLevel)) {
	case "trace":
		log.SetLevel(log.TraceLevel)
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	case "fatal":
		log.SetLevel(log.FatalLevel)
	}
	log.AddHook(loghelp.ContextHook{})
}
