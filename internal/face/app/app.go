package app

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aussiebroadwan/aipface/pkg/aipsdk"
	"github.com/aussiebroadwan/aipface/pkg/httpx"
	"github.com/aussiebroadwan/aipface/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// ErrCallFailed is returned when a command printed an error result.
var ErrCallFailed = errors.New("call failed")

// Application runs one face API command per invocation.
type Application struct {
	cfg    Config
	logger *slog.Logger
	out    io.Writer

	registry *prometheus.Registry
	client   *aipsdk.Client
}

// New validates cfg and creates the SDK client. Results are written to out.
func New(cfg Config, out io.Writer, opts ...aipsdk.Option) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg: cfg,
		out: out,
		logger: slogx.New(slogx.Config{
			Service: "aipface",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		registry: prometheus.NewRegistry(),
	}

	clientOpts := []aipsdk.Option{
		aipsdk.WithBaseURL(cfg.BaseURL),
		aipsdk.WithTimeout(cfg.Timeout),
		aipsdk.WithLogger(app.logger),
		aipsdk.WithMetrics(aipsdk.NewMetrics(app.registry)),
	}
	if cfg.RateLimit {
		clientOpts = append(clientOpts, aipsdk.WithRateLimit(httpx.DefaultLimit))
	}

	app.client = aipsdk.New(cfg.AppID, cfg.APIKey, cfg.SecretKey, append(clientOpts, opts...)...)

	return app, nil
}

// Close releases the client's connections and writes the metrics file if
// one is configured.
func (app *Application) Close() error {
	if err := app.client.Close(); err != nil {
		return err
	}

	if app.cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(app.cfg.MetricsFile, app.registry); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	return nil
}

// Run executes the command named by args[0].
func (app *Application) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command\n%s", usage)
	}

	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := optionsFlag{}
	fs.Var(&opts, "o", "extra request field as key=value (repeatable)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	if fs.NArg() < cmd.minArgs {
		return fmt.Errorf("usage: aipface %s %s", args[0], cmd.args)
	}

	ctx = slogx.WithContext(ctx, app.logger.With("command", args[0]))

	var res aipsdk.Result
	if args[0] == "token" {
		tok, err := app.client.Tokens().EnsureValid(ctx, true)
		if err != nil {
			res = aipsdk.Result{"error": err.Error()}
		} else {
			res = aipsdk.Result{
				"access_token": tok.AccessToken,
				"scope":        tok.Scope,
				"expires_at":   tok.ExpiresAt(),
			}
		}
	} else {
		var err error
		res, err = cmd.run(ctx, app.client, fs.Args(), aipsdk.Options(opts))
		if err != nil {
			return err
		}
	}

	enc := json.NewEncoder(app.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	if _, failed := res.Err(); failed {
		return ErrCallFailed
	}
	return nil
}

type command struct {
	args    string
	minArgs int
	run     func(ctx context.Context, c *aipsdk.Client, args []string, opts aipsdk.Options) (aipsdk.Result, error)
}

var commands = map[string]command{
	"detect": {
		args:    "<image-file>",
		minArgs: 1,
		run: func(ctx context.Context, c *aipsdk.Client, args []string, opts aipsdk.Options) (aipsdk.Result, error) {
			image, err := readImage(args[0])
			if err != nil {
				return nil, err
			}
			return c.Detect(ctx, image, opts), nil
		},
	},
	"match": {
		args:    "<image-file> <image-file> [image-file...]",
		minArgs: 2,
		run: func(ctx context.Context, c *aipsdk.Client, args []string, opts aipsdk.Options) (aipsdk.Result, error) {
			images := make([]string, 0, len(args))
			for _, path := range args {
				image, err := readImage(path)
				if err != nil {
					return nil, err
				}
				images = append(images, image)
			}
			return c.Match(ctx, images, opts), nil
		},
	},
	"identify": {
		args:    "<group-id> <image-file>",
		minArgs: 2,
		run: func(ctx context.Context, c *aipsdk.Client, args []string, opts aipsdk.Options) (aipsdk.Result, error) {
			image, err := readImage(args[1])
			if err != nil {
				return nil, err
			}
			return c.IdentifyUser(ctx, args[0], image, opts), nil
		},
	},
	"verify": {
		args:    "<uid> <group-id> <image-file>",
		minArgs: 3,
		run: func(ctx context.Context, c *aipsdk.Client, args []string, opts aipsdk.Options) (aipsdk.Result, error) {
			image, err := readImage(args[2])
			if err != nil {
				return nil, err
			}
			return c.Verify(ctx, args[0], args[1], image, opts), nil
		},
	},
	"groups": {
		run: func(ctx context.Context, c *aipsdk.Client, _ []string, opts aipsdk.Options) (aipsdk.Result, error) {
			return c.GroupList(ctx, opts), nil
		},
	},
	"users": {
		args:    "<group-id>",
		minArgs: 1,
		run: func(ctx context.Context, c *aipsdk.Client, args []string, opts aipsdk.Options) (aipsdk.Result, error) {
			return c.GroupGetUsers(ctx, args[0], opts), nil
		},
	},
	"token": {},
}

var usage = func() string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("usage: aipface <command> [-o key=value]... [args]\ncommands:\n")
	for _, name := range names {
		fmt.Fprintf(&sb, "  %s %s\n", name, commands[name].args)
	}
	return sb.String()
}()

// readImage returns the base64 encoding of the file at path.
func readImage(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// optionsFlag collects repeated -o key=value flags.
type optionsFlag map[string]string

func (o optionsFlag) String() string {
	pairs := make([]string, 0, len(o))
	for k, v := range o {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

func (o optionsFlag) Set(value string) error {
	k, v, ok := strings.Cut(value, "=")
	if !ok || k == "" {
		return fmt.Errorf("option %q is not key=value", value)
	}
	o[k] = v
	return nil
}
