// Package output prints operator-facing results. Diagnostics go to the
// logger; this is what the user is meant to read.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pterm/pterm"

	"github.com/yourusername/ballot-cli/pkg/ballot"
	"github.com/yourusername/ballot-cli/pkg/chain"
)

// Printer writes styled lines to one writer
type Printer struct {
	w       io.Writer
	info    *pterm.PrefixPrinter
	success *pterm.PrefixPrinter
	warning *pterm.PrefixPrinter
}

// New creates a printer on stdout
func New() *Printer {
	return NewWithWriter(os.Stdout)
}

// NewWithWriter creates a printer on w
func NewWithWriter(w io.Writer) *Printer {
	return &Printer{
		w:       w,
		info:    pterm.Info.WithWriter(w),
		success: pterm.Success.WithWriter(w),
		warning: pterm.Warning.WithWriter(w),
	}
}

// Plain disables colours and styling, for pipes and tests
func Plain() {
	pterm.DisableStyling()
}

func (p *Printer) Infof(format string, args ...interface{}) {
	p.info.Println(fmt.Sprintf(format, args...))
}

func (p *Printer) Successf(format string, args ...interface{}) {
	p.success.Println(fmt.Sprintf(format, args...))
}

func (p *Printer) Warnf(format string, args ...interface{}) {
	p.warning.Println(fmt.Sprintf(format, args...))
}

// Submitted reports a broadcast transaction. The hash is printed before any
// waiting so an interrupted run can still be followed up.
func (p *Printer) Submitted(tx *chain.PendingTransaction) {
	p.Infof("Transaction %s submitted: %s", tx.Method, tx.Hash.Hex())
	p.Infof("Waiting for confirmations...")
}

// Confirmed reports a mined receipt
func (p *Printer) Confirmed(r *chain.Receipt) {
	if r.Succeeded {
		p.Successf("Transaction completed at block %d (gas used %d)", r.BlockNumber, r.GasUsed)
		return
	}
	p.Warnf("Transaction %s reverted at block %d", r.TxHash.Hex(), r.BlockNumber)
}

// Deployed reports a new contract address
func (p *Printer) Deployed(addr common.Address) {
	p.Successf("Ballot contract deployed at %s", addr.Hex())
}

// Proposal prints one proposal line
func (p *Printer) Proposal(prop *ballot.Proposal) {
	p.Infof("Proposal #%d: %s (%s votes)", prop.Index, prop.Name, prop.VoteCount)
}

// Proposals renders proposals as a table
func (p *Printer) Proposals(props []ballot.Proposal) error {
	data := pterm.TableData{{"#", "Name", "Votes"}}
	for _, prop := range props {
		data = append(data, []string{
			fmt.Sprintf("%d", prop.Index),
			prop.Name,
			prop.VoteCount.String(),
		})
	}
	return pterm.DefaultTable.WithHasHeader(true).WithData(data).WithWriter(p.w).Render()
}

// Voter prints a voter record
func (p *Printer) Voter(addr common.Address, v *ballot.Voter) {
	p.Infof("Voter %s", addr.Hex())
	p.Infof("  weight:   %s", v.Weight)
	p.Infof("  voted:    %t", v.Voted)
	if v.Delegate != (common.Address{}) {
		p.Infof("  delegate: %s", v.Delegate.Hex())
	}
	if v.Voted && v.Delegate == (common.Address{}) {
		p.Infof("  vote:     #%s", v.Vote)
	}
}
