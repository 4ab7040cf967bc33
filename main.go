package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"vkazakov/fintrack/cmd/categorize"
	forecastcmd "vkazakov/fintrack/cmd/forecast"
	"vkazakov/fintrack/cmd/importcmd"
	insightscmd "vkazakov/fintrack/cmd/insights"
	"vkazakov/fintrack/cmd/pdf"
	"vkazakov/fintrack/cmd/root"
)

func init() {
	// Load environment variables before anything logs, then set the global
	// log level so even pre-config log lines honor LOG_LEVEL.
	loadEnvSilently()
	configureLogLevelDirectly()

	root.Init()

	root.Cmd.AddCommand(importcmd.Cmd)
	root.Cmd.AddCommand(pdf.Cmd)
	root.Cmd.AddCommand(categorize.Cmd)
	root.Cmd.AddCommand(forecastcmd.Cmd)
	root.Cmd.AddCommand(insightscmd.Cmd)
}

// loadEnvSilently loads .env without logging anything.
func loadEnvSilently() {
	envFile := ".env"
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		envFile = filepath.Join("..", ".env")
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			return
		}
	}
	_ = godotenv.Load(envFile)
}

// configureLogLevelDirectly sets the global logrus level from LOG_LEVEL.
func configureLogLevelDirectly() {
	logLevelStr := os.Getenv("LOG_LEVEL")
	if logLevelStr == "" {
		logLevelStr = "info"
	}

	logLevel, err := logrus.ParseLevel(strings.ToLower(logLevelStr))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
