package cmd

import (
	"log"
	"time"

	"github.com/nvoss/outreacher/internal/collector"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "outreacher"
)

type Config struct {
	Sources   *SourcesConfig   `mapstructure:"sources"`
	Discovery *DiscoveryConfig `mapstructure:"discovery"`
	Dispatch  *DispatchConfig  `mapstructure:"dispatch"`
	SMTP      *SMTPConfig      `mapstructure:"smtp"`
	Message   *MessageConfig   `mapstructure:"message"`
	Candidate *CandidateConfig `mapstructure:"candidate"`
}

type SourcesConfig struct {
	Greenhouse []*collector.BoardConfig  `mapstructure:"greenhouse"`
	Lever      []*collector.BoardConfig  `mapstructure:"lever"`
	People     []*collector.PersonConfig `mapstructure:"people"`
	Locations  []string                  `mapstructure:"locations"`
}

type DiscoveryConfig struct {
	MinimumConfidence float64       `mapstructure:"minimum-confidence"`
	Patterns          []string      `mapstructure:"patterns"`
	MXTimeout         time.Duration `mapstructure:"mx-timeout"`
}

type DispatchConfig struct {
	DailyCap   int           `mapstructure:"daily-cap"`
	DryRun     bool          `mapstructure:"dry-run"`
	Pause      time.Duration `mapstructure:"pause-between-sends"`
	LedgerFile string        `mapstructure:"ledger-file"`
	RateFile   string        `mapstructure:"rate-file"`
}

type SMTPConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	PasswordFile string `mapstructure:"password-file"`
	SenderName   string `mapstructure:"sender-name"`
	SenderEmail  string `mapstructure:"sender-email"`
}

type MessageConfig struct {
	Subject         string `mapstructure:"subject"`
	TemplateFile    string `mapstructure:"template-file"`
	Attachment      string `mapstructure:"attachment"`
	UnsubscribeText string `mapstructure:"unsubscribe-text"`
}

type CandidateConfig struct {
	Name    string `mapstructure:"name"`
	Email   string `mapstructure:"email"`
	Profile string `mapstructure:"profile"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "outreacher discovers recruiter email addresses for open job postings and sends rate-limited, deduplicated outreach",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("smtp.password-file", "SMTP_PASSWORD_FILE"); err != nil {
		log.Fatalf("binding SMTP_PASSWORD_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("dispatch.ledger-file", "OUTREACHER_LEDGER_FILE"); err != nil {
		log.Fatalf("binding OUTREACHER_LEDGER_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is outreacher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for run command now. If there is no config, we can skip initialization
	if runCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
