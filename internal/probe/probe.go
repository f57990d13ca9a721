package probe

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/storeprobe/internal/config"
	"github.com/hamed0406/storeprobe/internal/domain"
	"github.com/hamed0406/storeprobe/internal/notify"
	"github.com/hamed0406/storeprobe/internal/repo"
)

const (
	DefaultCollection = "jobs"
	DefaultLimit      = 5
)

// Probe is a one-shot check that the store named by the environment is
// reachable with the configured credential.
type Probe struct {
	Env        config.Env
	EnvFile    string      // where operators are told to put the keys
	Open       repo.Opener // nil: pick a backend from the endpoint scheme
	Collection string
	Limit      int

	Out      io.Writer
	Logger   *zap.Logger
	Notifier notify.Notifier // nil: built from SLACK_WEBHOOK_URL, if set
	Resolver Resolver        // nil: net.DefaultResolver
}

func (p *Probe) defaults() {
	if p.Env == nil {
		p.Env = config.OSEnv()
	}
	if p.EnvFile == "" {
		p.EnvFile = config.DefaultEnvFile
	}
	if p.Collection == "" {
		p.Collection = DefaultCollection
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Out == nil {
		p.Out = os.Stdout
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.Resolver == nil {
		p.Resolver = net.DefaultResolver
	}
}

var keyHints = map[string]string{
	config.KeyEndpoint:   "your Supabase URL",
	config.KeyCredential: "your service_role key",
}

// Run loads the configuration, opens the store and reads one sample. The
// trace goes to p.Out. The error is nil, a *ConfigurationError or a
// *ConnectivityError; pass it to ExitCode for the process status.
func (p *Probe) Run(ctx context.Context) (domain.ProbeResult, error) {
	p.defaults()
	r := reporter{w: p.Out}

	r.banner(func() { r.line("Store preflight: testing %s connection", p.Collection) })

	cfg, err := config.Load(p.Env)
	if err != nil {
		cerr := &ConfigurationError{Missing: config.Missing(err), EnvFile: p.EnvFile}
		for _, key := range cerr.Missing {
			r.fail("ERROR: %s not found in environment or %s", key, p.EnvFile)
			r.line("   Please update %s with %s", p.EnvFile, keyHints[key])
			p.Logger.Error("config_missing", zap.String("key", key), zap.String("env_file", p.EnvFile))
		}
		return domain.Failed(cerr.Error()), cerr
	}

	r.ok("%s: %s", config.KeyEndpoint, DisplayEndpoint(cfg.Endpoint))
	r.ok("%s: %s", config.KeyCredential, Redact(cfg.Credential))
	r.blank()

	log := p.Logger.With(
		zap.String("endpoint", DisplayEndpoint(cfg.Endpoint)),
		zap.String("collection", p.Collection),
	)
	log.Info("probe_start", zap.String("credential", Redact(cfg.Credential)), zap.Int("limit", p.Limit))

	open := p.Open
	if open == nil {
		open = repo.NewOpener(cfg.HTTPTimeout)
	}

	r.step("Connecting to store...")
	store, err := open(cfg.Endpoint, cfg.Credential)
	if err != nil {
		return p.connectivityFailure(ctx, r, log, cfg, &ConnectivityError{Op: "open", Err: err})
	}
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}

	r.step("Checking %s table...", p.Collection)
	start := time.Now()
	recs, err := store.Query(ctx, p.Collection, p.Limit)
	if err != nil {
		return p.connectivityFailure(ctx, r, log, cfg, &ConnectivityError{Op: "query", Err: err})
	}
	if len(recs) > p.Limit {
		recs = recs[:p.Limit]
	}
	log.Info("query_ok", zap.Int("records", len(recs)), zap.Duration("took", time.Since(start)))

	res := domain.Succeeded(recs)
	r.blank()
	r.banner(func() { r.ok("SUCCESS! Connection established!") })
	r.info("Current %s in database: %d", p.Collection, res.RecordCount)
	if res.Sample != nil {
		r.info("Sample %s: %s", singular(p.Collection), res.Sample.Field("title"))
		r.line("   Company: %s", res.Sample.Field("company_name"))
		r.line("   Location: %s", res.Sample.Field("location"))
	} else {
		r.info("No %s in database yet - the store is reachable but empty.", p.Collection)
	}
	r.blank()
	return res, nil
}

func (p *Probe) connectivityFailure(ctx context.Context, r reporter, log *zap.Logger, cfg config.Config, cerr *ConnectivityError) (domain.ProbeResult, error) {
	log.Error("query_failed", zap.String("op", cerr.Op), zap.Error(cerr.Err))

	r.blank()
	r.banner(func() { r.fail("CONNECTION FAILED!") })
	r.line("Error: %s", cerr.Error())

	dns := CheckDNS(ctx, p.Resolver, endpointHost(cfg.Endpoint))
	if dns.Class == ClassResolves {
		r.info("DNS: %s (%s)", dns.Class, dns.Domain)
	} else {
		r.warn("DNS: %s (%s)", dns.Class, dns.Domain)
	}
	log.Info("dns_check",
		zap.String("domain", dns.Domain),
		zap.String("class", dns.Class),
		zap.Bool("has_a_or_aaaa", dns.HasAOrAAAA),
		zap.Strings("nameservers", dns.Nameservers),
		zap.String("cname", dns.CNAME),
		zap.String("resolver_error", dns.ResolverError),
	)

	r.blank()
	r.line("Common fixes:")
	for i, hint := range remediationHints(p.EnvFile, p.Collection) {
		r.line("   %d. %s", i+1, hint)
	}
	r.blank()

	p.notify(ctx, log, cfg, cerr, dns.Class)
	return domain.Failed(cerr.Error()), cerr
}

func remediationHints(envFile, collection string) []string {
	return []string{
		"Make sure you're using the SERVICE ROLE key (not the anon key)",
		fmt.Sprintf("Check your .env file is in %s/", filepath.Dir(envFile)),
		fmt.Sprintf("Verify your %s is correct", config.KeyEndpoint),
		fmt.Sprintf("Run the %s table migration if you haven't already", collection),
	}
}

// notify is best effort; a failed notification never changes the outcome.
func (p *Probe) notify(ctx context.Context, log *zap.Logger, cfg config.Config, cerr *ConnectivityError, dnsClass string) {
	n := p.Notifier
	if n == nil {
		n = notify.NewSlack(cfg.SlackWebhook)
	}
	if n == nil {
		return
	}
	text := fmt.Sprintf("Endpoint: %s\nCollection: %s\nStep: %s\nDNS: %s\nError: %s",
		DisplayEndpoint(cfg.Endpoint), p.Collection, cerr.Op, dnsClass, cerr.Error())
	if err := n.Send(ctx, "Store preflight FAILED", text); err != nil {
		log.Warn("notify_failed", zap.Error(err))
	}
}

func singular(collection string) string {
	if s := strings.TrimSuffix(collection, "s"); s != "" {
		return s
	}
	return collection
}
