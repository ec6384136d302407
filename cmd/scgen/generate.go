package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/scgen/internal/client"
	"github.com/amishk599/scgen/internal/export"
	"github.com/amishk599/scgen/internal/model"
	"github.com/amishk599/scgen/internal/workflow"
)

var (
	genForm            = model.DefaultFormInput()
	genExperience      string
	genTone            string
	genProofread       bool
	genExport          string
	genExportProofread string
	genOutDir          string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a response from flags and print it",
	Long: `Generate a selection criteria response without the interactive form.
The response is printed to stdout; with --proofread the proofread version is
printed after it. Needs a running ` + "`scgen serve`" + `.`,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&genForm.CriteriaQuestion, "criteria", "q", "", "selection criteria question (required)")
	f.StringVarP(&genForm.JobTitle, "title", "t", "", "job title (required)")
	f.StringVar(&genExperience, "experience", string(model.Experience1to3), "years of experience: 1-3, 3-5, 5-10 or 10+")
	f.StringVar(&genTone, "tone", string(model.ToneProfessional), "tone: professional, confident, enthusiastic or formal")
	f.StringVar(&genForm.Skills, "skills", "", "key skills")
	f.StringVar(&genForm.Achievements, "achievements", "", "notable achievements")
	f.StringVar(&genForm.Education, "education", "", "education or qualifications")
	f.StringVar(&genForm.CurrentEmployer, "current-employer", "", "current employer")
	f.StringVar(&genForm.PreviousEmployer, "previous-employer", "", "previous employer")
	f.StringVar(&genForm.CandidateName, "name", "", "candidate first name")
	f.StringVar(&genForm.CandidateStrengths, "strengths", "", "candidate strengths")
	f.BoolVar(&genForm.UseSTAR, "star", false, "structure the response with the STAR method")
	f.BoolVar(&genForm.Humanize, "humanize", false, "ask for a more natural, human voice")
	f.BoolVar(&genProofread, "proofread", false, "proofread the generated response")
	f.StringVar(&genExport, "export", "", "save the generated response as docx or pdf")
	f.StringVar(&genExportProofread, "export-proofread", "", "save the proofread response as docx or pdf (implies --proofread)")
	f.StringVar(&genOutDir, "out", "", "export directory (overrides client.export_dir)")
	f.StringVar(&endpoint, "endpoint", "", "generation endpoint base URL (overrides client.endpoint)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		bootstrapLogger().Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if endpoint != "" {
		cfg.Client.Endpoint = endpoint
	}
	if genOutDir != "" {
		cfg.Client.ExportDir = genOutDir
	}
	// Logs go to stderr so stdout carries only the response.
	logger := setupLogger(os.Stderr, cfg.Log, debug)

	form := genForm
	form.Experience = model.Experience(genExperience)
	form.Tone = model.Tone(genTone)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if cfg.Client.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Client.Timeout)
		defer cancel()
	}

	c := client.New(cfg.Client.Endpoint, &http.Client{})
	logger.Debug("generating", "endpoint", cfg.Client.Endpoint)

	return generateResponse(ctx, c, generateOptions{
		Form:            form,
		Proofread:       genProofread,
		Export:          genExport,
		ExportProofread: genExportProofread,
		ExportDir:       cfg.Client.ExportDir,
	}, os.Stdout, os.Stderr, logger)
}

type generateOptions struct {
	Form            model.FormInput
	Proofread       bool
	Export          string // export format for the generated text, "" for none
	ExportProofread string // export format for the proofread text; implies Proofread
	ExportDir       string
}

// generateResponse runs generate and the optional proofread against g,
// printing results to stdout and counts to stderr.
func generateResponse(ctx context.Context, g workflow.Generator, opts generateOptions, stdout, stderr io.Writer, logger *slog.Logger) error {
	exportFormat, err := parseOptionalFormat(opts.Export)
	if err != nil {
		return err
	}
	proofreadFormat, err := parseOptionalFormat(opts.ExportProofread)
	if err != nil {
		return err
	}
	if exportFormat != "" && exportFormat == proofreadFormat {
		return fmt.Errorf("--export and --export-proofread would both write %s", exportFormat.FileName())
	}

	session := workflow.NewSession(logger)
	session.SetForm(opts.Form)

	if err := session.Generate(ctx, g); err != nil {
		return visibleError(session, err)
	}
	fmt.Fprintln(stdout, session.Generated())
	fmt.Fprintf(stderr, "Words: %d | Characters: %d\n", session.WordCount(), session.CharCount())

	if exportFormat != "" {
		path, err := export.Write(opts.ExportDir, session.Generated(), exportFormat)
		if err != nil {
			return err
		}
		logger.Info("exported response", "path", path, "mime", exportFormat.MIMEType())
	}

	if !opts.Proofread && proofreadFormat == "" {
		return nil
	}
	if err := session.Proofread(ctx, g); err != nil {
		return visibleError(session, err)
	}
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, session.ProofreadText())

	if proofreadFormat != "" {
		path, err := export.Write(opts.ExportDir, session.ProofreadText(), proofreadFormat)
		if err != nil {
			return err
		}
		logger.Info("exported proofread response", "path", path, "mime", proofreadFormat.MIMEType())
	}
	return nil
}

// visibleError prefers the message the session shows the user.
func visibleError(s *workflow.Session, err error) error {
	if msg := s.Err(); msg != "" {
		return errors.New(msg)
	}
	return err
}

func parseOptionalFormat(s string) (export.Format, error) {
	if s == "" {
		return "", nil
	}
	return export.ParseFormat(s)
}
