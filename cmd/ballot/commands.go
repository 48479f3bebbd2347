package main

import (
	"github.com/spf13/cobra"

	"github.com/yourusername/ballot-cli/pkg/ballot"
	"github.com/yourusername/ballot-cli/pkg/credentials"
	"github.com/yourusername/ballot-cli/pkg/flows"
	"github.com/yourusername/ballot-cli/pkg/prompt"
)

var (
	artifactPath string
	assumeYes    bool
	keyFromEnv   bool
)

var deployCmd = &cobra.Command{
	Use:   "deploy <proposal>...",
	Short: "Deploy a Ballot with the given proposal names",
	Long: `Deploy a new Ballot contract. Each proposal name must fit in 32 bytes.

The creation bytecode is read from a Hardhat artifact (--artifact or
BALLOT_ARTIFACT). The deployer key comes from PRIVATE_KEY.`,
	Example: `  ballot deploy --artifact artifacts/contracts/Ballot.sol/Ballot.json Alice Bob`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return flows.ErrNoProposals
		}

		path := cfg.Contract.ArtifactPath
		if artifactPath != "" {
			path = artifactPath
		}
		artifact, err := ballot.LoadArtifact(path)
		if err != nil {
			return err
		}

		r, closeFn, err := connect(cmd.Context(), func(p prompt.Prompter) credentials.Source {
			return keySource(p, true, false)
		})
		if err != nil {
			return err
		}
		defer closeFn()

		_, err = r.Deploy(cmd.Context(), artifact.Bytecode, args)
		return wrapCmdErr("deploy", err)
	},
}

var giveRightCmd = &cobra.Command{
	Use:   "give-right [contract] [voter]",
	Short: "Give an address the right to vote (chairperson only)",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, closeFn, err := connect(cmd.Context(), func(p prompt.Prompter) credentials.Source {
			return keySource(p, true, false)
		})
		if err != nil {
			return err
		}
		defer closeFn()

		_, err = r.GiveRightToVote(cmd.Context(), arg(args, 0), arg(args, 1))
		return wrapCmdErr("give-right", err)
	},
}

var delegateCmd = &cobra.Command{
	Use:   "delegate [contract] [delegatee]",
	Short: "Delegate your vote to another address",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, closeFn, err := connect(cmd.Context(), func(p prompt.Prompter) credentials.Source {
			return keySource(p, false, keyFromEnv)
		})
		if err != nil {
			return err
		}
		defer closeFn()

		_, err = r.Delegate(cmd.Context(), arg(args, 0), arg(args, 1))
		return wrapCmdErr("delegate", err)
	},
}

var voteCmd = &cobra.Command{
	Use:   "vote <contract> <index>",
	Short: "Vote for a proposal",
	Long: `Show the proposal at index and, once confirmed, vote for it.
Answering n cancels without sending anything.`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, closeFn, err := connect(cmd.Context(), func(p prompt.Prompter) credentials.Source {
			return keySource(p, false, keyFromEnv)
		})
		if err != nil {
			return err
		}
		defer closeFn()

		_, err = r.CastVote(cmd.Context(), arg(args, 0), arg(args, 1), flows.VoteOptions{AssumeYes: assumeYes})
		return wrapCmdErr("vote", err)
	},
}

var proposalsCmd = &cobra.Command{
	Use:   "proposals <contract>",
	Short: "List proposals and vote counts",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, closeFn, err := connect(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer closeFn()

		_, err = r.ListProposals(cmd.Context(), arg(args, 0))
		return wrapCmdErr("proposals", err)
	},
}

var voterCmd = &cobra.Command{
	Use:   "voter <contract> <address>",
	Short: "Show the contract's record for a voter",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, closeFn, err := connect(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer closeFn()

		_, err = r.VoterInfo(cmd.Context(), arg(args, 0), arg(args, 1))
		return wrapCmdErr("voter", err)
	},
}

func init() {
	deployCmd.Flags().StringVar(&artifactPath, "artifact", "", "Hardhat artifact with the Ballot bytecode")

	voteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "vote without asking for confirmation")
	voteCmd.Flags().BoolVar(&keyFromEnv, "key-env", false, "read the voter key from PRIVATE_KEY instead of asking")
	delegateCmd.Flags().BoolVar(&keyFromEnv, "key-env", false, "read the delegator key from PRIVATE_KEY instead of asking")
}
