package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"exam-docs/internal/documents"
	"exam-docs/internal/handlers"
	"exam-docs/internal/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type documentKind struct {
	template     string
	perClassroom bool
	build        func(ctx context.Context, svc *documents.Service, p models.DocumentParams) (interface{}, error)
}

var documentKinds = map[string]documentKind{
	"statement": {
		template:     "statement.html",
		perClassroom: true,
		build: func(ctx context.Context, svc *documents.Service, p models.DocumentParams) (interface{}, error) {
			return svc.Statements(ctx, p)
		},
	},
	"registration-list": {
		template:     "registration_list.html",
		perClassroom: true,
		build: func(ctx context.Context, svc *documents.Service, p models.DocumentParams) (interface{}, error) {
			return svc.RegistrationLists(ctx, p)
		},
	},
	"general-statement": {
		template: "general_statement.html",
		build: func(ctx context.Context, svc *documents.Service, p models.DocumentParams) (interface{}, error) {
			return svc.GeneralStatement(ctx, p)
		},
	},
	"transfer-act": {
		template: "transfer_act.html",
		build: func(ctx context.Context, svc *documents.Service, p models.DocumentParams) (interface{}, error) {
			return svc.TransferAct(ctx, p)
		},
	},
	"accompanying-sheets": {
		template:     "accompanying_sheets.html",
		perClassroom: true,
		build: func(ctx context.Context, svc *documents.Service, p models.DocumentParams) (interface{}, error) {
			return svc.AccompanyingSheets(ctx, p)
		},
	},
}

func documentKindNames() []string {
	names := make([]string, 0, len(documentKinds))
	for name := range documentKinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var renderOpts struct {
	params models.DocumentParams
	format string
	output string
}

var renderCmd = &cobra.Command{
	Use:   "render <document>",
	Short: "Render a document to stdout or a file",
	Long: `Render one document type as printable HTML or as JSON.

Documents: ` + strings.Join(documentKindNames(), ", ") + `

Examples:
  examdocs render statement --subject Математика --exam-date 2026-03-12 --site-code 0412 --classroom 101
  examdocs render accompanying-sheets --subject Математика --exam-date 2026-03-12 --site-code 0412 --all -o sheets.html`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: documentKindNames(),
	RunE:      runRender,
}

func init() {
	f := renderCmd.Flags()
	f.StringVar(&renderOpts.params.Subject, "subject", "", "Subject name")
	f.StringVar(&renderOpts.params.ExamDate, "exam-date", "", "Exam date (YYYY-MM-DD)")
	f.StringVar(&renderOpts.params.SiteCode, "site-code", "", "Exam site code")
	f.StringVar(&renderOpts.params.Classroom, "classroom", "", "Classroom number")
	f.StringVar(&renderOpts.params.Parallel, "parallel", "", "Parallel (accompanying sheets only)")
	f.BoolVar(&renderOpts.params.AllClassrooms, "all", false, "One document per classroom of the subject")
	f.StringVar(&renderOpts.format, "format", "html", "Output format: html or json")
	f.StringVarP(&renderOpts.output, "output", "o", "", "Write to file instead of stdout")
}

func runRender(cmd *cobra.Command, args []string) error {
	// Bad arguments are reported before any connection attempt.
	if _, err := checkRequest(args[0], renderOpts.format, renderOpts.params); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	store, conn, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	renderer, err := handlers.NewRenderer(logger)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	svc := documents.NewService(store, logger)
	if err := renderDocument(ctx, svc, renderer, args[0], renderOpts.params, renderOpts.format, &buf); err != nil {
		return err
	}

	if renderOpts.output == "" {
		_, err = buf.WriteTo(cmd.OutOrStdout())
		return err
	}
	if err := os.WriteFile(renderOpts.output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", renderOpts.output, err)
	}
	logger.Info("document written", zap.String("document", args[0]), zap.String("path", renderOpts.output))
	return nil
}

// renderDocument builds the named document and writes it to w as HTML or
// JSON. Nothing is written when building fails.
func renderDocument(ctx context.Context, svc *documents.Service, rd *handlers.Renderer, kind string, p models.DocumentParams, format string, w io.Writer) error {
	dk, err := checkRequest(kind, format, p)
	if err != nil {
		return err
	}

	doc, err := dk.build(ctx, svc, p)
	if err != nil {
		return err
	}

	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}
	return rd.Execute(w, dk.template, doc)
}

// checkRequest resolves the document kind and validates the format and
// parameters. It needs no database.
func checkRequest(kind, format string, p models.DocumentParams) (documentKind, error) {
	dk, ok := documentKinds[kind]
	if !ok {
		return documentKind{}, fmt.Errorf("unknown document %q (want one of: %s)", kind, strings.Join(documentKindNames(), ", "))
	}
	if format != "html" && format != "json" {
		return documentKind{}, fmt.Errorf("unknown format %q (want html or json)", format)
	}
	if err := documents.ValidateParams(p, dk.perClassroom); err != nil {
		return documentKind{}, err
	}
	return dk, nil
}
