package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dkijania/vit-testing/controller"
	"github.com/dkijania/vit-testing/internal/config"
	"github.com/dkijania/vit-testing/internal/model"
	"github.com/dkijania/vit-testing/internal/qr"
)

var (
	voteQRs     []string
	votePin     string
	voteChoice  uint8
	voteTargets []string
)

// proposalsCmd lists proposals open for voting.
var proposalsCmd = &cobra.Command{
	Use:   "proposals",
	Short: "List proposals open for voting",
	RunE: func(_ *cobra.Command, _ []string) error {
		proposals, err := newBackend().Proposals()
		if err != nil {
			return err
		}
		for _, p := range proposals {
			fmt.Printf("%s\t%s\t(voteplan %s, index %d)\n", p.InternalID, p.ProposalTitle, p.ChainVoteplanID, p.ChainProposalIndex)
		}
		return nil
	},
}

func voteController() (*controller.MultiController, error) {
	if len(voteQRs) == 0 {
		return nil, fmt.Errorf("at least one --qr wallet is required")
	}
	pin := qr.PinReader{Mode: qr.PinInteractive}
	if votePin != "" {
		pin = qr.PinReader{Mode: qr.PinGlobal, GlobalPin: votePin}
	}
	return controller.RecoverFromQRs(newBackend(), voteQRs, pin)
}

func findProposal(proposals []model.Proposal, internalID string) (model.Proposal, error) {
	for _, p := range proposals {
		if p.InternalID == internalID {
			return p, nil
		}
	}
	return model.Proposal{}, fmt.Errorf("unknown proposal %q", internalID)
}

// voteCmd casts one vote per listed proposal from the first wallet.
var voteCmd = &cobra.Command{
	Use:   "vote",
	Short: "Cast votes on proposals",
	RunE: func(_ *cobra.Command, _ []string) error {
		if len(voteTargets) == 0 {
			return fmt.Errorf("at least one --proposal is required")
		}

		ctrl, err := voteController()
		if err != nil {
			return err
		}

		proposals, err := ctrl.Proposals()
		if err != nil {
			return err
		}

		inputs := make([]controller.VoteInput, 0, len(voteTargets))
		for _, target := range voteTargets {
			proposal, err := findProposal(proposals, target)
			if err != nil {
				return err
			}
			inputs = append(inputs, controller.VoteInput{Proposal: proposal, Choice: voteChoice})
		}

		const walletIndex = 0
		if len(inputs) == 1 {
			if err := ctrl.RefreshWallet(walletIndex); err != nil {
				return err
			}
			id, err := ctrl.Vote(walletIndex, inputs[0].Proposal, inputs[0].Choice)
			if err != nil {
				return err
			}
			fmt.Printf("fragment %s\n", id)
			return nil
		}

		ids, err := ctrl.VotesBatch(walletIndex, config.GetUseV1Batch(), inputs)
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Printf("fragment %s\n", id)
		}
		return nil
	},
}

// convertedCmd reports which wallets are already recognized on chain.
var convertedCmd = &cobra.Command{
	Use:   "converted",
	Short: "Check which wallets are recognized on chain",
	RunE: func(_ *cobra.Command, _ []string) error {
		ctrl, err := voteController()
		if err != nil {
			return err
		}
		for i := 0; i < ctrl.WalletCount(); i++ {
			ok, err := ctrl.IsConverted(i)
			if err != nil {
				return err
			}
			fmt.Printf("%s: converted=%v\n", ctrl.Wallet(i).ID(), ok)
		}
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{voteCmd, convertedCmd} {
		cmd.Flags().StringSliceVar(&voteQRs, "qr", nil, "wallet QR code files")
		cmd.Flags().StringVar(&votePin, "pin", "", "pin protecting the wallet QR codes")
	}
	voteCmd.Flags().StringSliceVar(&voteTargets, "proposal", nil, "proposal ids to vote on")
	voteCmd.Flags().Uint8Var(&voteChoice, "choice", 0, "vote choice discriminant")

	rootCmd.AddCommand(proposalsCmd)
	rootCmd.AddCommand(voteCmd)
	rootCmd.AddCommand(convertedCmd)
}
