package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hearthbot/hearth/forms"
	"github.com/hearthbot/hearth/internal/catalog"
	"github.com/hearthbot/hearth/internal/config"
	"github.com/hearthbot/hearth/internal/event"
	"github.com/hearthbot/hearth/internal/eventbus"
	"github.com/hearthbot/hearth/internal/formdef"
	"github.com/hearthbot/hearth/internal/host"
	"github.com/hearthbot/hearth/internal/host/session"
	"github.com/hearthbot/hearth/internal/host/term"
	"github.com/hearthbot/hearth/internal/host/ws"
	"github.com/hearthbot/hearth/internal/i18n"
	"github.com/hearthbot/hearth/internal/insights"
	"github.com/hearthbot/hearth/internal/journal"
	"github.com/hearthbot/hearth/internal/server"
	"github.com/hearthbot/hearth/internal/worker"
)

var rootCmd = &cobra.Command{
	Use:   "hearthd",
	Short: "Hearth form service",
	Long: `Hearth runs multi-step interactive forms. Definitions are written in CUE,
clients fill them over a WebSocket session or right here in the terminal,
and every resolved run lands in the submission journal.`,
}

func main() {
	log.SetPrefix("hearthd ")
	log.SetFlags(log.LstdFlags)

	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("HEARTH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("config", "c", "hearth.yml", "config file")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func registerCommands() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(defsCmd())
	rootCmd.AddCommand(docsCmd())
	rootCmd.AddCommand(tokenCmd())
}

// loadConfig reads the config file and applies env overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOptional(viper.GetString("config"))
	if err != nil {
		return nil, err
	}
	if s := viper.GetString("secret"); s != "" {
		cfg.Server.Secret = s
	}
	if p := viper.GetInt("port"); p != 0 {
		cfg.Server.Port = p
	}
	return cfg, nil
}

func buildRegistry(cfg *config.Config) (*formdef.Registry, error) {
	if cfg.Definitions.Dir != "" {
		return formdef.LoadDir(cfg.Definitions.Dir)
	}
	return formdef.Demo(), nil
}

func buildCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.Catalog.File != "" {
		return catalog.LoadFile(cfg.Catalog.File)
	}
	return catalog.Seed(), nil
}

// buildStore opens the configured journal store and returns it with its
// closer.
func buildStore(cfg *config.Config) (journal.Store, func(), error) {
	if cfg.Journal.Driver == config.DriverSQLite {
		s, err := journal.Open(cfg.Journal.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("opening journal: %w", err)
		}
		return s, func() { s.Close() }, nil
	}
	return journal.NewMemoryStore(), func() {}, nil
}

func serveCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the form service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			if cfg.Server.Secret == "" {
				return fmt.Errorf("server.secret is required (set it in hearth.yml or HEARTH_SECRET)")
			}

			registry, err := buildRegistry(cfg)
			if err != nil {
				return err
			}
			cat, err := buildCatalog(cfg)
			if err != nil {
				return err
			}
			store, closeStore, err := buildStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			ctx := cmd.Context()
			collector := insights.NewCollector()
			bus := eventbus.New(256)
			bus.Subscribe("log", eventbus.NewLogConsumer())
			bus.Subscribe("insights", collector)
			bus.Start(ctx)
			defer bus.Stop()

			sessions := session.NewManager(cfg.Sessions.MaxAge.Std(), cfg.Sessions.IdleTimeout.Std())
			go worker.NewSweeper(sessions, cfg.Sessions.SweepInterval.Std()).Run(ctx)

			log.Printf("serving %d form(s) for cluster %s", len(registry.Names()), cfg.Cluster)
			return server.Run(ctx, server.Config{
				Port:       cfg.Server.Port,
				Registry:   registry,
				Lookup:     cat,
				Translator: i18n.ForLocale(cfg.Locale),
				Store:      store,
				Bus:        bus,
				Collector:  collector,
				Sessions:   sessions,
				Secret:     []byte(cfg.Server.Secret),
			})
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides config)")
	return cmd
}

func runCmd() *cobra.Command {
	var actor string
	var sets []string
	cmd := &cobra.Command{
		Use:   "run <form>",
		Short: "Fill a form in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			registry, err := buildRegistry(cfg)
			if err != nil {
				return err
			}
			def, ok := registry.Get(args[0])
			if !ok {
				return fmt.Errorf("no form named %q (hearthd defs lists them)", args[0])
			}
			cat, err := buildCatalog(cfg)
			if err != nil {
				return err
			}
			store, closeStore, err := buildStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()
			prefill, err := parseSets(sets)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			bus := eventbus.New(64)
			bus.Subscribe("log", eventbus.NewLogConsumer())
			bus.Start(ctx)
			defer bus.Stop()

			scope := event.Scope{Form: def.Name, Session: "terminal", Actor: actor, Cluster: cfg.Cluster}
			f, err := formdef.Build(def, formdef.BuildOptions{
				Lookup:     cat,
				Translator: i18n.ForLocale(cfg.Locale),
				Observers:  []forms.Observer{event.NewRecorder(bus, scope)},
				Prefill:    prefill,
			})
			if err != nil {
				return err
			}

			started := time.Now()
			if _, err := term.Run(ctx, f, os.Stdin, os.Stdout); err != nil {
				if !f.Status().Resolved() {
					_ = f.Timeout(context.Background())
				}
				if ctx.Err() == nil {
					return err
				}
			}

			rec, err := host.Conclude(context.Background(), f, host.Run{
				Scope:     scope,
				Prefill:   prefill,
				StartedAt: started,
			}, store, bus)
			if err != nil {
				return err
			}
			printRecord(rec)
			return nil
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "local-user", "actor identifier")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "prefill a field, field=value (repeatable)")
	return cmd
}

func defsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "defs",
		Short: "List loaded form definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			registry, err := buildRegistry(cfg)
			if err != nil {
				return err
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"Name", "Title", "Fields", "Access"})
			for _, d := range registry.All() {
				access := "everyone"
				if len(d.Access) > 0 {
					access = strings.Join(d.Access, ", ")
				}
				tw.AppendRow(table.Row{d.Name, d.Title, len(d.Fields), access})
			}
			tw.Render()
			return nil
		},
	}
	return cmd
}

func docsCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Write Markdown reference pages for the loaded definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			registry, err := buildRegistry(cfg)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(out, 0755); err != nil {
				return err
			}
			names := registry.Names()
			for _, name := range names {
				def, _ := registry.Get(name)
				path := filepath.Join(out, name+".md")
				if err := os.WriteFile(path, formdoc(def), 0644); err != nil {
					return fmt.Errorf("writing %s: %w", path, err)
				}
			}
			fmt.Printf("docs: wrote %d page(s) to %s\n", len(names), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "docs/forms", "output directory")
	return cmd
}

// formdoc renders one definition as a Markdown reference page.
func formdoc(d *formdef.Definition) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", d.Title)
	if d.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", d.Description)
	}
	access := "everyone"
	if len(d.Access) > 0 {
		access = strings.Join(d.Access, ", ")
	}
	fmt.Fprintf(&b, "- Form: `%s`\n", d.Name)
	fmt.Fprintf(&b, "- Access: %s\n\n", access)
	writeFieldTable(&b, d.Fields)
	for _, fd := range d.Fields {
		writeGroupSection(&b, fd)
	}
	return []byte(b.String())
}

func writeFieldTable(b *strings.Builder, fields []formdef.FieldDef) {
	b.WriteString("| Field | Kind | Label | Required | Details |\n")
	b.WriteString("| --- | --- | --- | --- | --- |\n")
	for _, fd := range fields {
		req := "no"
		if fd.Required {
			req = "yes"
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n", fd.Name, fd.Kind, fd.Label, req, fieldDetails(fd))
	}
	b.WriteString("\n")
}

// writeGroupSection gives each group field its own table covering the
// sub-fields, since a single Details cell cannot hold them.
func writeGroupSection(b *strings.Builder, fd formdef.FieldDef) {
	if len(fd.Fields) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", fd.Name)
	writeFieldTable(b, fd.Fields)
	for _, sub := range fd.Fields {
		writeGroupSection(b, sub)
	}
}

func fieldDetails(fd formdef.FieldDef) string {
	var parts []string
	switch {
	case fd.MinLength > 0 && fd.MaxLength > 0:
		parts = append(parts, fmt.Sprintf("length %d to %d", fd.MinLength, fd.MaxLength))
	case fd.MinLength > 0:
		parts = append(parts, fmt.Sprintf("length at least %d", fd.MinLength))
	case fd.MaxLength > 0:
		parts = append(parts, fmt.Sprintf("length at most %d", fd.MaxLength))
	}
	switch {
	case fd.MinValue != nil && fd.MaxValue != nil:
		parts = append(parts, fmt.Sprintf("range %s to %s", trimFloat(*fd.MinValue), trimFloat(*fd.MaxValue)))
	case fd.MinValue != nil:
		parts = append(parts, "at least "+trimFloat(*fd.MinValue))
	case fd.MaxValue != nil:
		parts = append(parts, "at most "+trimFloat(*fd.MaxValue))
	}
	if len(fd.Forbidden) > 0 {
		parts = append(parts, "forbidden: "+strings.Join(fd.Forbidden, ", "))
	}
	if len(fd.Choices) > 0 {
		labels := make([]string, len(fd.Choices))
		for i, c := range fd.Choices {
			labels[i] = c.Label
		}
		parts = append(parts, "choices: "+strings.Join(labels, ", "))
	}
	switch {
	case fd.MaxValues == -1:
		parts = append(parts, "pick any number")
	case fd.MinValues > 1 || fd.MaxValues > 1:
		lo := fd.MinValues
		if lo < 1 {
			lo = 1
		}
		parts = append(parts, fmt.Sprintf("pick %d to %d", lo, fd.MaxValues))
	}
	if fd.Appear != "" {
		parts = append(parts, fmt.Sprintf("appears when `%s`", fd.Appear))
	}
	if fd.Default != nil {
		parts = append(parts, fmt.Sprintf("default %v", fd.Default))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "; ")
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func tokenCmd() *cobra.Command {
	var actor, cluster string
	var roles []string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Server.Secret == "" {
				return fmt.Errorf("server.secret is required (set it in hearth.yml or HEARTH_SECRET)")
			}
			if cluster == "" {
				cluster = cfg.Cluster
			}
			tok, err := ws.NewToken([]byte(cfg.Server.Secret), actor, roles, cluster, ttl)
			if err != nil {
				return err
			}
			fmt.Println(tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "local-user", "actor identifier")
	cmd.Flags().StringSliceVar(&roles, "roles", nil, "roles to embed in the token")
	cmd.Flags().StringVar(&cluster, "cluster", "", "cluster (defaults to config)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

// parseSets turns repeated field=value flags into a prefill map. Values
// stay raw strings; fields interpret them like any other answer.
func parseSets(sets []string) (map[string]any, error) {
	if len(sets) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(sets))
	for _, s := range sets {
		k, v, ok := strings.Cut(s, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("--set wants field=value, got %q", s)
		}
		out[k] = v
	}
	return out, nil
}

func printRecord(rec *journal.Record) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Record", "Status", "Answered", "Duration"})
	tw.AppendRow(table.Row{
		rec.ID,
		rec.Status,
		fmt.Sprintf("%d/%d", rec.Answered, rec.FieldCount),
		rec.ResolvedAt.Sub(rec.StartedAt).Round(time.Second),
	})
	tw.Render()
	if len(rec.Values) > 0 {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, rec.Values, "", "  "); err == nil {
			fmt.Println(pretty.String())
		}
	}
}
