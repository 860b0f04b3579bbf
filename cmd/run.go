package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/nvoss/outreacher/internal/collector"
	"github.com/nvoss/outreacher/internal/discovery"
	"github.com/nvoss/outreacher/internal/dispatch"
	"github.com/nvoss/outreacher/internal/ledger"
	"github.com/nvoss/outreacher/internal/logger"
	"github.com/nvoss/outreacher/internal/mailer"
	"github.com/nvoss/outreacher/internal/outreach"
	"github.com/nvoss/outreacher/internal/personalize"
	"github.com/nvoss/outreacher/internal/ratelimit"
	"github.com/nvoss/outreacher/internal/secrets"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"

	defaultDailyCap   = 40
	defaultLedgerFile = "outreach_ledger.json"
	defaultRateFile   = "outreach_rate.json"
	defaultJobTitle   = "open role"
)

var prompt = promptui.Select{
	Label: "Proceed with live sending?",
	Items: []string{PromptYes, PromptNo},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the outreacher main command",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("dry-run", false, "run every gate and state update but simulate the actual send")
	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before a live send batch")

	viper.BindPFlag("dispatch.dry-run", runCmd.Flags().Lookup("dry-run"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the outreacher", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	applyDefaults(config)

	if config.Candidate == nil || config.Candidate.Name == "" || config.Candidate.Email == "" {
		logger.Fatal("candidate name and email are required under the candidate section")
	}

	people := collectPeople(ctx, config, logger)
	if people.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no recruiter contacts collected"))
		return
	}

	logger.Info("collected recruiter contacts", zap.Int("count", people.Len()))

	records := discoverRecords(ctx, config, people, logger)

	store, err := ledger.Open(config.Dispatch.LedgerFile)
	if err != nil {
		logger.Fatal("opening the send ledger", zap.Error(err))
	}

	limiter, err := ratelimit.Open(config.Dispatch.RateFile, config.Dispatch.DailyCap)
	if err != nil {
		logger.Fatal("opening the rate state", zap.Error(err))
	}

	logger.Info("loaded durable state",
		zap.Int("ledger_entries", store.Len()),
		zap.Int("sent_today", limiter.SentToday()),
		zap.Int("daily_cap", limiter.Cap()),
	)

	sender, dryRun := prepareSender(config, logger)

	if !dryRun && cmd.Flag("auto-approve").Value.String() == "false" {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if action != PromptYes {
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	controller := dispatch.New(store, limiter, sender, config.Dispatch.Pause, logger)

	if _, err := controller.Run(ctx, records); err != nil {
		logger.Fatal("dispatch aborted", zap.Error(err))
	}
}

func applyDefaults(config *Config) {
	if config.Sources == nil {
		config.Sources = &SourcesConfig{}
	}
	if config.Discovery == nil {
		config.Discovery = &DiscoveryConfig{}
	}
	if config.Dispatch == nil {
		config.Dispatch = &DispatchConfig{}
	}
	if config.Message == nil {
		config.Message = &MessageConfig{}
	}
	if config.Dispatch.DailyCap == 0 {
		config.Dispatch.DailyCap = defaultDailyCap
	}
	if config.Dispatch.LedgerFile == "" {
		config.Dispatch.LedgerFile = defaultLedgerFile
	}
	if config.Dispatch.RateFile == "" {
		config.Dispatch.RateFile = defaultRateFile
	}
}

// collectPeople gathers recruiter contacts from every configured listing
// source. A failing board is logged and skipped; it must not abort the run.
func collectPeople(ctx context.Context, config *Config, log *zap.Logger) *outreach.People {
	people := &outreach.People{}
	client := collector.New(ctx, log)

	for _, board := range config.Sources.Greenhouse {
		jobs, err := client.GreenhouseJobs(board)
		if err != nil {
			log.Warn("skipping greenhouse board", zap.String("slug", board.Slug), zap.Error(err))
			continue
		}
		appendContact(people, board, jobs, config.Sources.Locations, logger.WithCommonFields(log, "greenhouse", board.Company))
	}

	for _, board := range config.Sources.Lever {
		jobs, err := client.LeverJobs(board)
		if err != nil {
			log.Warn("skipping lever board", zap.String("slug", board.Slug), zap.Error(err))
			continue
		}
		appendContact(people, board, jobs, config.Sources.Locations, logger.WithCommonFields(log, "lever", board.Company))
	}

	people.Append(collector.PeopleFromConfig(config.Sources.People)...)

	return people
}

func appendContact(people *outreach.People, board *collector.BoardConfig, jobs []*collector.Job, locations []string, log *zap.Logger) {
	matched := collector.FilterByLocation(jobs, locations)

	log.Info("fetched board postings",
		zap.String("slug", board.Slug),
		zap.Int("jobs", len(jobs)),
		zap.Int("matching_location", len(matched)),
	)

	if person := collector.ContactFor(board, matched); person != nil {
		people.Append(person)
	}
}

func discoverRecords(ctx context.Context, config *Config, people *outreach.People, log *zap.Logger) []*discovery.Record {
	patterns, err := discovery.ParsePatterns(config.Discovery.Patterns)
	if err != nil {
		log.Fatal("parsing pattern precedence", zap.Error(err))
	}

	validator := discovery.NewValidator(nil, config.Discovery.MXTimeout, log)
	finder := discovery.NewFinder(validator, nil, patterns, config.Discovery.MinimumConfidence, log)

	records := make([]*discovery.Record, 0, people.Len())
	for _, person := range people.Items {
		records = append(records, finder.Discover(ctx, person))
	}

	return records
}

// prepareSender wires the transport and renderer behind the dispatch
// contract. Missing SMTP settings force dry-run mode, which mirrors a live
// run in everything but the transmission itself.
func prepareSender(config *Config, log *zap.Logger) (dispatch.Transport, bool) {
	renderer, err := personalize.NewFromFile(config.Message.Subject, config.Message.TemplateFile, config.Message.UnsubscribeText)
	if err != nil {
		log.Fatal("loading message templates", zap.Error(err))
	}

	dryRun := config.Dispatch.DryRun

	var transport mailer.Transport
	switch {
	case dryRun:
		transport = &mailer.DryRun{Logger: log}
	case config.SMTP == nil || config.SMTP.Host == "" || config.SMTP.SenderEmail == "":
		log.Warn("smtp is not configured, falling back to dry-run mode")
		dryRun = true
		transport = &mailer.DryRun{Logger: log}
	default:
		password := ""
		if config.SMTP.Username != "" {
			password, err = secrets.Load(secrets.Source{
				Name: "smtp password",
				File: config.SMTP.PasswordFile,
				Env:  "SMTP_PASSWORD",
			})
			if err != nil {
				log.Fatal(
					"loading smtp password",
					zap.Error(err),
					zap.String("hint", "set SMTP_PASSWORD_FILE, SMTP_PASSWORD or the 'smtp.password-file' key in the configuration file"),
				)
			}
		}

		transport = mailer.NewSMTP(&mailer.Config{
			Host:        config.SMTP.Host,
			Port:        config.SMTP.Port,
			Username:    config.SMTP.Username,
			Password:    password,
			SenderName:  config.SMTP.SenderName,
			SenderEmail: config.SMTP.SenderEmail,
		}, log)
	}

	return &outreachSender{
		transport:  transport,
		renderer:   renderer,
		attachment: config.Message.Attachment,
		candidate:  config.Candidate,
	}, dryRun
}

// outreachSender renders a discovery record into a message and hands it to
// the mail transport.
type outreachSender struct {
	transport  mailer.Transport
	renderer   *personalize.Renderer
	attachment string
	candidate  *CandidateConfig
}

func (s *outreachSender) Send(ctx context.Context, rec *discovery.Record) error {
	person := rec.Person

	jobTitle := person.JobTitle
	if jobTitle == "" {
		jobTitle = defaultJobTitle
	}

	subject, body, err := s.renderer.Render(&personalize.Context{
		RecruiterName:    person.FullName,
		CompanyName:      person.CompanyName,
		JobTitle:         jobTitle,
		CandidateName:    s.candidate.Name,
		CandidateEmail:   s.candidate.Email,
		CandidateProfile: s.candidate.Profile,
	})
	if err != nil {
		return fmt.Errorf("rendering message for %s: %w", rec.Address(), err)
	}

	return s.transport.Send(ctx, &mailer.Message{
		To:             rec.Address(),
		Subject:        subject,
		Body:           body,
		AttachmentPath: s.attachment,
	})
}
