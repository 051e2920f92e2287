package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"pga/internal"
	"pga/internal/api"
	"pga/internal/config"
	"pga/internal/connectors"
	"pga/internal/listener"
	"pga/internal/logging"
	"pga/internal/pipeline"
	"pga/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	must(err)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := os.Args[1]
	args := os.Args[2:]
	switch cmd {
	case "process":
		fs := pflag.NewFlagSet(cmd, pflag.ExitOnError)
		in := documentInputFlags(fs)
		_ = fs.Parse(args)

		store := openStore(ctx, cfg)
		defer store.Close()
		svc := pipeline.NewProcessingService(store, pipeline.NewNormalizer(cfg.KnownInstitutions, logger), logger)

		pages, req := in.load()
		res, err := svc.ProcessPages(ctx, pages, req)
		must(err)
		fmt.Printf("document stored id=%s institution=%q projects=%d acquisitions=%d\n",
			res.ID, res.Document.InstitutionName, len(res.Document.Projects), len(res.Document.Acquisitions))
	case "extract":
		fs := pflag.NewFlagSet(cmd, pflag.ExitOnError)
		in := documentInputFlags(fs)
		_ = fs.Parse(args)

		pages, req := in.load()
		doc, err := pipeline.NewNormalizer(cfg.KnownInstitutions, logger).Normalize(pages, pipeline.NormalizeRequest{
			FilePath:        req.FileName,
			InstitutionName: req.InstitutionName,
			Year:            req.Year,
		})
		if err != nil {
			printJSON(map[string]any{"success": false, "error": err.Error()})
			os.Exit(1)
		}
		printJSON(map[string]any{"success": true, "extractedData": pages, "normalizedData": doc})
	case "documents:list":
		fs := pflag.NewFlagSet(cmd, pflag.ExitOnError)
		institution := fs.String("institution", "", "institution name")
		year := fs.Int("year", 0, "reference year")
		_ = fs.Parse(args)

		store := openStore(ctx, cfg)
		defer store.Close()
		docs, err := store.Find(ctx, storage.Filter{InstitutionName: *institution, Year: *year})
		must(err)
		if len(docs) == 0 {
			fmt.Println("no documents found")
			return
		}
		for i, d := range docs {
			fmt.Printf("%d. %s  %s (%d)  unit=%q  extracted=%s\n",
				i+1, d.ID, d.InstitutionName, d.ReferenceYear, d.Unit.Name, d.Metadata.ExtractionTimestamp)
		}
	case "documents:get":
		fs := pflag.NewFlagSet(cmd, pflag.ExitOnError)
		id := fs.String("id", "", "document id")
		out := fs.String("out", "", "output json path (stdout when empty)")
		_ = fs.Parse(args)
		requireFlag("--id", *id)

		store := openStore(ctx, cfg)
		defer store.Close()
		doc, err := store.Get(ctx, *id)
		must(err)
		must(writeJSON(*out, doc))
	case "documents:new":
		fs := pflag.NewFlagSet(cmd, pflag.ExitOnError)
		out := fs.String("out", "", "output json path (stdout when empty)")
		_ = fs.Parse(args)
		must(writeJSON(*out, pipeline.NewTemplateDocument(time.Now())))
	case "documents:save":
		fs := pflag.NewFlagSet(cmd, pflag.ExitOnError)
		file := fs.String("file", "", "document json path")
		_ = fs.Parse(args)
		requireFlag("--file", *file)

		raw, err := os.ReadFile(*file)
		must(err)
		var doc storage.StoredDocument
		must(json.Unmarshal(raw, &doc))

		store := openStore(ctx, cfg)
		defer store.Close()
		id, err := store.InsertOrReplace(ctx, doc)
		must(err)
		fmt.Printf("document saved id=%s\n", id)
	case "documents:fix-names":
		store := openStore(ctx, cfg)
		defer store.Close()
		updated, err := pipeline.BackfillUnitNames(ctx, store, logger)
		must(err)
		fmt.Printf("unit names filled: %d\n", updated)
	case "export:xlsx":
		fs := pflag.NewFlagSet(cmd, pflag.ExitOnError)
		id := fs.String("id", "", "document id")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(args)
		requireFlag("--id", *id)
		if strings.TrimSpace(*out) == "" {
			*out = filepath.Join(cfg.OutputDir, "pga-"+*id+".xlsx")
		}

		store := openStore(ctx, cfg)
		defer store.Close()
		doc, err := store.Get(ctx, *id)
		must(err)
		must(pipeline.ExportDocumentToXLSX(doc.NormalizedDocument, *out))
		fmt.Printf("exported %s to %s\n", *id, *out)
	case "mail:fetch":
		fs := pflag.NewFlagSet(cmd, pflag.ExitOnError)
		provider := fs.String("provider", cfg.MailListenerProvider, "gmail|imap")
		label := fs.String("label", cfg.MailListenerLabel, "mailbox/label")
		max := fs.Int("max", cfg.MailListenerFetchMax, "max messages")
		_ = fs.Parse(args)

		conn, err := listener.NewConnector(ctx, cfg, *provider)
		must(err)
		fetch := connectors.NewFetchService(conn, connectors.NewMailStore(cfg.RawMailDir), logger)
		result, err := fetch.FetchAndStore(ctx, *label, *max)
		must(err)
		fmt.Printf("mail fetch done provider=%s fetched=%d new=%d\n", *provider, result.Fetched, len(result.New))
	case "mail:listen":
		store := openStore(ctx, cfg)
		defer store.Close()
		conn, err := listener.NewConnector(ctx, cfg, cfg.MailListenerProvider)
		must(err)
		svc := pipeline.NewProcessingService(store, pipeline.NewNormalizer(cfg.KnownInstitutions, logger), logger)
		must(listener.NewService(cfg, conn, svc, logger).Run(ctx))
	case "serve":
		fs := pflag.NewFlagSet(cmd, pflag.ExitOnError)
		addr := fs.String("addr", cfg.HTTPAddr, "listen address")
		_ = fs.Parse(args)

		store := openStore(ctx, cfg)
		defer store.Close()
		svc := pipeline.NewProcessingService(store, pipeline.NewNormalizer(cfg.KnownInstitutions, logger), logger)
		must(serve(ctx, *addr, api.NewServer(store, svc, logger, cfg.HTTPMaxUploadMB).Handler(), logger))
	default:
		usage()
		os.Exit(1)
	}
}

type documentInput struct {
	file        *string
	pages       *string
	institution *string
	year        *int
}

func documentInputFlags(fs *pflag.FlagSet) documentInput {
	return documentInput{
		file:        fs.String("file", "", "PGA pdf path"),
		pages:       fs.String("pages", "", "pre-tokenized pages json (instead of tokenizing --file)"),
		institution: fs.String("institution", "", "institution name (detected from the document when empty)"),
		year:        fs.Int("year", time.Now().Year(), "reference year"),
	}
}

// load reads the pages to normalize, tokenizing --file unless --pages
// supplies them already.
func (in documentInput) load() ([]internal.Page, pipeline.ProcessRequest) {
	if *in.file == "" && *in.pages == "" {
		must(errors.New("--file or --pages is required"))
	}

	req := pipeline.ProcessRequest{InstitutionName: *in.institution, Year: *in.year}
	if *in.file != "" {
		content, err := os.ReadFile(*in.file)
		must(err)
		req.FileName = filepath.Base(*in.file)
		req.Content = content
	}

	if *in.pages != "" {
		f, err := os.Open(*in.pages)
		must(err)
		defer f.Close()
		pages, err := pipeline.LoadPages(f)
		must(err)
		if req.FileName == "" {
			req.FileName = filepath.Base(*in.pages)
		}
		return pages, req
	}

	pages, err := pipeline.ExtractPages(req.Content)
	must(err)
	return pages, req
}

func openStore(ctx context.Context, cfg config.Config) storage.Store {
	store, err := storage.Open(ctx, cfg)
	must(err)
	return store
}

func serve(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func printJSON(v any) {
	must(encodeJSON(os.Stdout, v))
}

func writeJSON(path string, v any) error {
	if path == "" {
		return encodeJSON(os.Stdout, v)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encodeJSON(f, v); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func requireFlag(name, value string) {
	if strings.TrimSpace(value) == "" {
		must(fmt.Errorf("%s is required", name))
	}
}

func usage() {
	fmt.Println("usage: pga <command>")
	fmt.Println("commands:")
	fmt.Println("  process --file=pga.pdf [--pages=pages.json] [--institution=...] [--year=2025]")
	fmt.Println("  extract --file=pga.pdf [--pages=pages.json] [--institution=...] [--year=2025]")
	fmt.Println("  documents:list [--institution=...] [--year=2025]")
	fmt.Println("  documents:get --id=... [--out=doc.json]")
	fmt.Println("  documents:new [--out=doc.json]")
	fmt.Println("  documents:save --file=doc.json")
	fmt.Println("  documents:fix-names")
	fmt.Println("  export:xlsx --id=... [--out=./out/pga.xlsx]")
	fmt.Println("  mail:fetch [--provider=imap|gmail] [--label=INBOX] [--max=20]")
	fmt.Println("  mail:listen")
	fmt.Println("  serve [--addr=:8080]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
