package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/yourusername/ballot-cli/pkg/chain"
	"github.com/yourusername/ballot-cli/pkg/config"
	"github.com/yourusername/ballot-cli/pkg/credentials"
	"github.com/yourusername/ballot-cli/pkg/flows"
	"github.com/yourusername/ballot-cli/pkg/logging"
	"github.com/yourusername/ballot-cli/pkg/output"
	"github.com/yourusername/ballot-cli/pkg/prompt"
)

type globalFlags struct {
	ConfigFile string
	RPCURL     string
	Verbose    bool
	Timeout    time.Duration
}

var (
	flagsGlobal globalFlags
	cfg         *config.Config
	logger      *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ballot",
	Short: "Deploy and use Ballot voting contracts",
	Long: `ballot drives a Ballot voting contract on an EVM test network.

The node endpoint is built from ALCHEMY_API_KEY unless --rpc-url is given.
Private keys are read from PRIVATE_KEY or asked for and are never printed.
A .env file in the working directory is loaded first.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(flagsGlobal.ConfigFile)
		if err != nil {
			return err
		}

		if flagsGlobal.RPCURL != "" {
			cfg.Node.URL = flagsGlobal.RPCURL
		}
		if flagsGlobal.Timeout > 0 {
			cfg.Polling.TimeoutSeconds = int(flagsGlobal.Timeout.Round(time.Second) / time.Second)
			if cfg.Polling.TimeoutSeconds < 1 {
				cfg.Polling.TimeoutSeconds = 1
			}
		}
		if flagsGlobal.Verbose {
			cfg.Log.Level = "debug"
		}

		logger, err = logging.New(cfg.Log)
		if err != nil {
			return err
		}

		if !term.IsTerminal(int(os.Stdout.Fd())) {
			output.Plain()
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagsGlobal.ConfigFile, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagsGlobal.RPCURL, "rpc-url", "", "node JSON-RPC endpoint (overrides the API key template)")
	rootCmd.PersistentFlags().BoolVarP(&flagsGlobal.Verbose, "verbose", "v", false, "debug logging on stderr")
	rootCmd.PersistentFlags().DurationVar(&flagsGlobal.Timeout, "timeout", 0, "how long to wait for a receipt (default 3m)")

	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(giveRightCmd)
	rootCmd.AddCommand(delegateCmd)
	rootCmd.AddCommand(voteCmd)
	rootCmd.AddCommand(proposalsCmd)
	rootCmd.AddCommand(voterCmd)
}

// keySource returns where a command's signing key comes from. Commands that
// sign as the operator's own account read PRIVATE_KEY first; the others ask
// unless fromEnv is set.
func keySource(p prompt.Prompter, envFirst, fromEnv bool) credentials.Source {
	env := credentials.Env{Var: config.EnvPrivateKey}
	switch {
	case fromEnv:
		return env
	case envFirst:
		return credentials.FirstOf{env, credentials.Prompt{Prompter: p}}
	default:
		return credentials.Prompt{Prompter: p}
	}
}

// connect dials the node and builds a runner. The returned func closes the
// connection.
func connect(ctx context.Context, creds func(prompt.Prompter) credentials.Source) (*flows.Runner, func(), error) {
	endpoint, err := cfg.Node.Endpoint()
	if err != nil {
		return nil, nil, err
	}

	client, err := chain.Dial(ctx, chain.ClientConfig{
		URL:           endpoint,
		Timeout:       cfg.Node.Timeout(),
		RetryAttempts: cfg.Node.RetryAttempts,
		RetryBackoff:  cfg.Node.RetryBackoff(),
	}, logger.Named("rpc"))
	if err != nil {
		return nil, nil, err
	}

	var chainID *big.Int
	if id := cfg.Node.ExpectedChainID(); id != 0 {
		chainID = big.NewInt(id)
	}

	p := prompt.NewTerminal()
	var src credentials.Source
	if creds != nil {
		src = creds(p)
	}

	r := flows.NewRunner(client,
		chain.SubmitterConfig{
			ChainID:          chainID,
			GasLimit:         cfg.Tx.GasLimit,
			GasMultiplier:    cfg.Tx.GasMultiplier,
			FallbackGasLimit: cfg.Tx.FallbackGasLimit,
		},
		chain.TrackerConfig{
			Interval:      cfg.Polling.Interval(),
			Timeout:       cfg.Polling.Timeout(),
			Confirmations: cfg.Polling.Confirmations,
		},
		src, p, output.New(), logger)

	return r, client.Close, nil
}

// arg returns args[i] or "" so missing operands are prompted for
func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func wrapCmdErr(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}
