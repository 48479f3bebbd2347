package ballot

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Artifact is the subset of a Hardhat compilation artifact needed to deploy
type Artifact struct {
	ContractName string          `json:"contractName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     hexutil.Bytes   `json:"bytecode"`
}

// LoadArtifact reads a Hardhat artifact such as
// artifacts/contracts/Ballot.sol/Ballot.json
func LoadArtifact(path string) (*Artifact, error) {
	if path == "" {
		return nil, fmt.Errorf("no contract artifact configured")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse artifact %s: %w", path, err)
	}
	if len(a.Bytecode) == 0 {
		return nil, fmt.Errorf("artifact %s has no bytecode", path)
	}

	return &a, nil
}
