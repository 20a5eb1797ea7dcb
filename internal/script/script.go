// Package script models the scripted status playback used by the checkout
// and portal flows as data: an ordered list of (message, delay) lines played
// by an injectable player. No real work happens between lines; the player
// exists so tests can run the same flows with zero delay.
package script

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Line is one scripted status message with the pause before the next line.
type Line struct {
	Message string
	Delay   time.Duration
}

// Script is an ordered playback sequence.
type Script []Line

// New builds a script from messages with a uniform per-line delay.
func New(delay time.Duration, messages ...string) Script {
	s := make(Script, len(messages))
	for i, msg := range messages {
		s[i] = Line{Message: msg, Delay: delay}
	}
	return s
}

// Checkout returns the fixed processing sequence played between confirming a
// checkout and invoking key issuance.
func Checkout() Script {
	return New(800*time.Millisecond,
		"Establishing Quantum Node...",
		"Generating Secure Key-Pair...",
		"Piercing Dimensional Veil...",
		"Verifying Forest Protocol...",
		"Finalizing License Encryption...",
	)
}

// Boot returns the portal boot sequence for a product.
func Boot(productName, version string) Script {
	return New(500*time.Millisecond,
		fmt.Sprintf("Initializing %s Core v%s...", productName, version),
		"Loading Dimensional Tunnelling protocols...",
		"Establishing handshakes with Forest Nodes...",
		"Quantum encryption: READY",
		"Awaiting License Verification...",
	)
}

// Execution returns the portal transfer sequence for the configured wallet,
// amount and asset. The verification hash is cosmetic random hex.
func Execution(wallet string, amount float64, asset string) Script {
	return New(800*time.Millisecond,
		fmt.Sprintf("Syncing with wallet: %s...", wallet),
		fmt.Sprintf("Preparing %.2f %s flash packet...", amount, asset),
		"Bypassing node detection...",
		"Opening dimensional rift...",
		"Injecting liquidity stream...",
		"Verification hash: 0x"+randomHex(8),
		"Tunneling through Block 1928374...",
		"Obfuscating transaction traces...",
		"Finalizing quantum flash...",
	)
}

func randomHex(n int) string {
	buf := make([]byte, (n+1)/2)
	if _, err := rand.Read(buf); err != nil {
		return strings.Repeat("0", n)
	}
	return strings.ToUpper(hex.EncodeToString(buf))[:n]
}
