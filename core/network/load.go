package network

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// LoadFile reads a JSON problem description from disk. Decode errors are
// returned as produced by the JSON package.
func LoadFile(path string) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	net, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return net, nil
}

// Decode parses a network document from r and applies the documented
// defaults.
func Decode(r io.Reader) (*Network, error) {
	var net Network
	if err := json.NewDecoder(r).Decode(&net); err != nil {
		return nil, err
	}
	net.applyDefaults()
	return &net, nil
}

func (n *Network) applyDefaults() {
	if n.BaseMVA == 0 {
		n.BaseMVA = 100
	}
	for i := range n.Branches {
		n.Branches[i].defaultAngles()
	}
	for i := range n.Candidates {
		n.Candidates[i].defaultAngles()
	}
}

func (b *Branch) defaultAngles() {
	if b.AngMin == 0 && b.AngMax == 0 {
		b.AngMin = -DefaultAngle
		b.AngMax = DefaultAngle
	}
}
