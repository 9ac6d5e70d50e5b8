package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"

	"cnpj-contatos/internal/config"
	"cnpj-contatos/internal/enricher"
	"cnpj-contatos/internal/storage"
	"cnpj-contatos/pkg/contact"
)

var version = "1.0.0"

var noColor bool

// flags holds all parsed CLI options.
type flags struct {
	// Subject
	cnpj string
	nome string
	url  string
	file string

	// Pipeline
	parallel int
	timeout  int
	fetcher  string

	// Request
	userAgent string
	proxy     string
	headers   []string
	insecure  bool

	// Storage
	output string
	noDB   bool
	initDB bool
	show   string

	// Output
	logLevel string
	silent   bool

	// Meta
	showHelp    bool
	showVersion bool
}

func main() {
	enableANSI()

	// Local .env files are optional.
	_ = godotenv.Load()

	f := parseFlags()

	if f.showVersion {
		fmt.Printf("contatos v%s\n", version)
		os.Exit(0)
	}
	if f.showHelp {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("%v", err)
	}
	applyFlags(cfg, f)

	logger := newLogger(cfg.LogLevel, f.silent)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle Ctrl+C
	sig := make(chan os.Signal, 1)
	registerSignals(sig)
	go func() {
		<-sig
		fmt.Fprintf(os.Stderr, "\n%s Interrupção recebida, aguardando empresas em andamento...\n", clr("yellow", "!"))
		cancel()
	}()

	switch {
	case f.initDB:
		runInitDB(ctx, cfg, logger)
	case f.show != "":
		runShow(ctx, cfg, f.show, logger)
	default:
		runEnrich(ctx, cfg, f, logger)
	}
}

func runInitDB(ctx context.Context, cfg *config.Config, logger zerolog.Logger) {
	if cfg.DatabaseURL == "" {
		fatal("DATABASE_URL não configurada")
	}
	pool, err := storage.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		fatal("conexão com o banco: %v", err)
	}
	store := storage.NewPostgresStore(pool, logger)
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		fatal("criação do esquema: %v", err)
	}
	fmt.Printf("  %s Esquema dados_enriquecidos pronto\n", clr("green", "✓"))
}

// recordGetter is the read side of the store behind -show.
type recordGetter interface {
	Get(ctx context.Context, cnpj string) (*contact.Record, error)
}

// lookupRecord normalizes the CNPJ before querying: rows are keyed by the
// normalized form, so masked or un-padded input must find the same row the
// enrichment wrote.
func lookupRecord(ctx context.Context, store recordGetter, raw string) (*contact.Record, error) {
	cnpj, err := contact.NormalizeCNPJ(raw)
	if err != nil {
		return nil, err
	}
	return store.Get(ctx, cnpj)
}

func runShow(ctx context.Context, cfg *config.Config, raw string, logger zerolog.Logger) {
	if cfg.DatabaseURL == "" {
		fatal("DATABASE_URL não configurada")
	}
	pool, err := storage.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		fatal("conexão com o banco: %v", err)
	}
	store := storage.NewPostgresStore(pool, logger)
	defer store.Close()

	rec, err := lookupRecord(ctx, store, raw)
	if errors.Is(err, contact.ErrInvalidCNPJ) {
		fatal("%v", err)
	}
	if errors.Is(err, storage.ErrRecordNotFound) {
		fatal("nenhum registro para o CNPJ %s", contact.FormatCNPJ(raw))
	}
	if err != nil {
		fatal("consulta: %v", err)
	}

	data, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		fatal("serialização: %v", err)
	}
	fmt.Println(string(data))
}

func runEnrich(ctx context.Context, cfg *config.Config, f *flags, logger zerolog.Logger) {
	subjects := loadSubjects(f)
	if len(subjects) == 0 {
		printUsage()
		os.Exit(1)
	}

	store := buildStore(ctx, cfg, f, logger)
	defer store.Close()

	ecfg := enricher.DefaultConfig()
	ecfg.Parallelism = cfg.Parallelism
	ecfg.Timeout = cfg.Timeout
	ecfg.UserAgent = cfg.UserAgent
	ecfg.Proxy = cfg.Proxy
	ecfg.InsecureTLS = cfg.InsecureTLS
	ecfg.CustomHeaders = f.headers
	ecfg.FetcherMode = enricher.FetcherMode(cfg.Fetcher)

	e := enricher.New(ecfg, store, logger)
	if err := e.Init(); err != nil {
		fatal("inicialização: %v", err)
	}
	defer e.Close()

	if !f.silent {
		printBanner()
		fmt.Printf("\n  %s %d  %s %d  %s %s\n\n",
			clr("cyan", "Empresas:"), len(subjects),
			clr("dim", "Paralelismo:"), cfg.Parallelism,
			clr("dim", "Fetcher:"), cfg.Fetcher,
		)
	}

	var bar *progressbar.ProgressBar
	if !f.silent && len(subjects) > 1 {
		bar = progressbar.Default(int64(len(subjects)), "Enriquecendo")
		e.OnOutcome = func(contact.Outcome) { _ = bar.Add(1) }
	}

	start := time.Now()
	outcomes := e.Run(ctx, subjects)
	if bar != nil {
		_ = bar.Finish()
	}

	printSummary(outcomes, len(subjects), time.Since(start), f)

	for _, o := range outcomes {
		if !o.OK() {
			os.Exit(1)
		}
	}
}

// buildStore always exports to the JSON file; Postgres joins in when a
// DATABASE_URL is configured and -no-db was not given.
func buildStore(ctx context.Context, cfg *config.Config, f *flags, logger zerolog.Logger) contact.Store {
	stores := []contact.Store{storage.NewFileStore(cfg.OutputPath, logger)}

	if cfg.DatabaseURL != "" && !f.noDB {
		pool, err := storage.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			fatal("conexão com o banco: %v", err)
		}
		pg := storage.NewPostgresStore(pool, logger)
		if err := pg.EnsureSchema(ctx); err != nil {
			fatal("criação do esquema: %v", err)
		}
		stores = append(stores, pg)
	} else {
		logger.Info().Msg("Persistência em banco desabilitada, salvando somente em arquivo")
	}

	return storage.NewMultiStore(stores...)
}

func loadSubjects(f *flags) []contact.Subject {
	if f.file != "" {
		subjects, err := readSubjectsCSV(f.file)
		if err != nil {
			fatal("leitura de %s: %v", f.file, err)
		}
		return subjects
	}
	if f.cnpj != "" || f.url != "" {
		return []contact.Subject{{CNPJ: f.cnpj, RazaoSocial: f.nome, URL: f.url}}
	}
	return nil
}

// readSubjectsCSV loads subjects from a CSV with cnpj, razao_social and url
// columns. A header row is detected by its first field and skipped.
func readSubjectsCSV(path string) ([]contact.Subject, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var subjects []contact.Subject
	for i, row := range rows {
		if len(row) < 3 {
			return nil, fmt.Errorf("linha %d: esperadas 3 colunas (cnpj, razao_social, url)", i+1)
		}
		cnpj := strings.TrimSpace(row[0])
		if i == 0 && strings.EqualFold(cnpj, "cnpj") {
			continue
		}
		subjects = append(subjects, contact.Subject{
			CNPJ:        cnpj,
			RazaoSocial: strings.TrimSpace(row[1]),
			URL:         strings.TrimSpace(row[2]),
		})
	}
	return subjects, nil
}

func printSummary(outcomes []contact.Outcome, total int, elapsed time.Duration, f *flags) {
	if f.silent {
		return
	}

	succeeded := 0
	fmt.Println()
	fmt.Printf("  %s\n", strings.Repeat("─", 50))
	for _, o := range outcomes {
		name := o.Subject.RazaoSocial
		if name == "" {
			name = contact.FormatCNPJ(o.Subject.CNPJ)
		}
		if o.OK() {
			succeeded++
			rec := o.Record
			fmt.Printf("  %s %s %s\n",
				clr("green", "✓"), name,
				clr("dim", fmt.Sprintf("(tel:%d email:%d %s)", len(rec.Phones), len(rec.Emails), fmtDur(o.Duration))),
			)
		} else {
			fmt.Printf("  %s %s %s\n",
				clr("red", "✗"), name,
				clr("dim", fmt.Sprintf("[%s] %v", o.Stage, o.Err)),
			)
		}
	}
	fmt.Printf("  %s\n", strings.Repeat("─", 50))
	fmt.Printf("  %s\n\n", summaryTotals(len(outcomes), succeeded, total, elapsed))
}

// summaryTotals renders the closing line of the batch summary. Fewer
// processed than total means the run was interrupted.
func summaryTotals(processed, succeeded, total int, elapsed time.Duration) string {
	return fmt.Sprintf("%s processadas: %s concluídas, %s falhas em %s",
		clr("bold", fmt.Sprintf("%d/%d", processed, total)),
		clr("cyan", fmt.Sprintf("%d", succeeded)),
		clr("red", fmt.Sprintf("%d", processed-succeeded)),
		fmtDur(elapsed),
	)
}

// ---------- Flag parsing ----------

func parseFlags() *flags {
	f := &flags{}

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		arg := args[i]
		next := func() string {
			if i+1 < len(args) {
				i++
				return args[i]
			}
			fatal("flag %s exige um argumento", arg)
			return ""
		}
		nextInt := func() int {
			v := next()
			var n int
			fmt.Sscanf(v, "%d", &n)
			return n
		}

		switch arg {
		// Subject
		case "-cnpj", "--cnpj":
			f.cnpj = next()
		case "-nome", "--nome":
			f.nome = next()
		case "-u", "--url":
			f.url = next()
		case "-file", "--file":
			f.file = next()

		// Pipeline
		case "-c", "--parallelism":
			f.parallel = nextInt()
		case "-t", "--timeout":
			f.timeout = nextInt()
		case "-f", "--fetcher":
			f.fetcher = next()

		// Request
		case "-ua", "--user-agent":
			f.userAgent = next()
		case "-px", "--proxy":
			f.proxy = next()
		case "-H", "--header":
			f.headers = append(f.headers, next())
		case "-k", "--insecure":
			f.insecure = true

		// Storage
		case "-o", "-out", "--out":
			f.output = next()
		case "-no-db", "--no-db":
			f.noDB = true
		case "-init-db", "--init-db":
			f.initDB = true
		case "-show", "--show":
			f.show = next()

		// Output
		case "-ll", "--log-level":
			f.logLevel = next()
		case "-si", "--silent":
			f.silent = true
		case "-nc", "--no-color":
			noColor = true

		// Meta
		case "-h", "--help":
			f.showHelp = true
		case "-V", "--version":
			f.showVersion = true

		default:
			// Treat bare arg as URL if no URL yet
			if !strings.HasPrefix(arg, "-") && f.url == "" {
				f.url = arg
			} else {
				fmt.Fprintf(os.Stderr, "Flag desconhecida: %s (use --help)\n", arg)
				os.Exit(1)
			}
		}
	}
	return f
}

// applyFlags overrides env-derived configuration with explicit CLI values.
func applyFlags(cfg *config.Config, f *flags) {
	if f.parallel > 0 {
		cfg.Parallelism = f.parallel
	}
	if f.timeout > 0 {
		cfg.Timeout = time.Duration(f.timeout) * time.Second
	}
	if f.fetcher != "" {
		switch mode := strings.ToLower(f.fetcher); mode {
		case "http", "browser", "auto":
			cfg.Fetcher = mode
		default:
			fatal("fetcher inválido: %s (use http, browser ou auto)", f.fetcher)
		}
	}
	if f.userAgent != "" {
		cfg.UserAgent = f.userAgent
	}
	if f.proxy != "" {
		cfg.Proxy = f.proxy
	}
	if f.output != "" {
		cfg.OutputPath = f.output
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if f.insecure {
		cfg.InsecureTLS = true
	}
}

func newLogger(level string, silent bool) zerolog.Logger {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if silent {
		return logger.Level(zerolog.ErrorLevel)
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return logger.Level(lvl)
}

// ---------- Help / banner ----------

func printUsage() {
	printBanner()
	fmt.Print(`
USO:
  contatos -cnpj <cnpj> -nome <razão social> -u <url>
  contatos -file empresas.csv
  contatos -show 12345678000195
  contatos -init-db

EMPRESA:
  -cnpj,    --cnpj <string>        CNPJ da empresa (com ou sem máscara)
  -nome,    --nome <string>        razão social da empresa
  -u,       --url <string>         site da empresa
  -file,    --file <string>        CSV em lote com colunas cnpj, razao_social, url

PIPELINE:
  -c,       --parallelism <int>    empresas processadas em paralelo (padrão 5)
  -t,       --timeout <int>        tempo limite de download em segundos (padrão 15)
  -f,       --fetcher <string>     modo de busca: http, browser, auto (padrão "http")

REQUISIÇÃO:
  -ua,      --user-agent <string>  user-agent das requisições
  -px,      --proxy <string>       proxy http/socks5
  -H,       --header <string>      cabeçalho extra "Chave: Valor" (repetível)
  -k,       --insecure             aceita certificados TLS inválidos

ARMAZENAMENTO:
  -o,       --out <string>         caminho do arquivo JSON de exportação
  -no-db,   --no-db                não grava no Postgres
  -init-db, --init-db              cria tabela e índice no Postgres e sai
  -show,    --show <string>        exibe o registro salvo de um CNPJ e sai

SAÍDA:
  -ll,      --log-level <string>   nível de log: trace, debug, info, warn, error
  -si,      --silent               suprime toda a saída exceto erros
  -nc,      --no-color             desabilita cores no terminal

META:
  -h,       --help                 exibe esta ajuda
  -V,       --version              exibe a versão

Variáveis de ambiente (DATABASE_URL, CONTATOS_*) fornecem os padrões;
flags têm precedência. Um arquivo .env no diretório atual é carregado
automaticamente.

`)
}

func printBanner() {
	art := `
   ██████╗ ██████╗ ███╗   ██╗████████╗ █████╗ ████████╗ ██████╗ ███████╗
  ██╔════╝██╔═══██╗████╗  ██║╚══██╔══╝██╔══██╗╚══██╔══╝██╔═══██╗██╔════╝
  ██║     ██║   ██║██╔██╗ ██║   ██║   ███████║   ██║   ██║   ██║███████╗
  ██║     ██║   ██║██║╚██╗██║   ██║   ██╔══██║   ██║   ██║   ██║╚════██║
  ╚██████╗╚██████╔╝██║ ╚████║   ██║   ██║  ██║   ██║   ╚██████╔╝███████║
   ╚═════╝ ╚═════╝ ╚═╝  ╚═══╝   ╚═╝   ╚═╝  ╚═╝   ╚═╝    ╚═════╝ ╚══════╝`
	fmt.Println(clr("cyan", art))
	fmt.Printf("  %s  %s\n", clr("dim", "Enriquecimento de contatos de empresas pelo CNPJ"), clr("dim", "v"+version))
	fmt.Printf("  %s\n", clr("dim", strings.Repeat("─", 72)))
}

// ---------- Utilities ----------

func fmtDur(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm%ds", m, s)
}

func clr(color, text string) string {
	if noColor {
		return text
	}
	codes := map[string]string{
		"red":    "\033[31m",
		"green":  "\033[32m",
		"yellow": "\033[33m",
		"cyan":   "\033[36m",
		"dim":    "\033[2m",
		"bold":   "\033[1m",
		"reset":  "\033[0m",
	}
	c, ok := codes[color]
	if !ok {
		return text
	}
	return c + text + codes["reset"]
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "\n  %s %s\n\n", clr("red", "ERRO:"), fmt.Sprintf(format, args...))
	os.Exit(1)
}
