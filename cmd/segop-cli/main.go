// Command segop-cli is a conformance and debugging harness for the segOP
// wire format: each subcommand reads a single JSON request object from
// stdin and writes a single JSON response object to stdout, in the shape
// rubin-protocol's rubin-consensus-cli uses to drive its own conformance
// suite. Global logging flags are parsed with go-flags before urfave/cli
// takes over subcommand dispatch, mirroring pktd's own config-then-dispatch
// split between its daemon config and btcctl-style command routing.
package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/go-errors/errors"
	flags "github.com/jessevdk/go-flags"
	"github.com/urfave/cli"

	"github.com/defenwycke/segregated-op-return/classify"
	"github.com/defenwycke/segregated-op-return/consensus"
	"github.com/defenwycke/segregated-op-return/internal/logging"
	"github.com/defenwycke/segregated-op-return/retention"
	"github.com/defenwycke/segregated-op-return/txscript"
	"github.com/defenwycke/segregated-op-return/wire"
)

// globalOptions holds the flags parsed by go-flags before the remaining
// arguments are handed to the urfave/cli subcommand dispatcher.
type globalOptions struct {
	LogLevel string `long:"log-level" description:"trace, debug, info, warn, error, off" default:"off"`
	LogFile  string `long:"log-file" description:"optional file to append leveled logs to"`
}

func parseLevel(s string) logging.Level {
	switch s {
	case "trace":
		return logging.LevelTrace
	case "debug":
		return logging.LevelDebug
	case "info":
		return logging.LevelInfo
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelOff
	}
}

func main() {
	var opts globalOptions
	parser := flags.NewParser(&opts, flags.IgnoreUnknown)
	rest, err := parser.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	level := parseLevel(opts.LogLevel)
	if opts.LogFile != "" {
		l, closeFn, err := logging.NewFileLogger(opts.LogFile, 10*1024, 3, level)
		if err != nil {
			fmt.Fprintln(os.Stderr, errors.Errorf("open log file %q: %w", opts.LogFile, err))
			os.Exit(1)
		}
		defer closeFn()
		logging.SetLogger(l)
	} else if level != logging.LevelOff {
		logging.SetLogger(logging.NewStderrLogger(level))
	}

	app := cli.NewApp()
	app.Name = "segop-cli"
	app.Usage = "parse, validate, and classify segOP transactions"
	app.Commands = []cli.Command{
		parseCommand,
		txidCommand,
		validateCommand,
		classifyCommand,
		retentionCheckCommand,
		tlvDumpCommand,
		p2pkhCommand,
	}

	if err := app.Run(append([]string{"segop-cli"}, rest...)); err != nil {
		logging.Errorf("%v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// request/response envelope, shared by every subcommand.

type request struct {
	TxHex       string `json:"tx_hex,omitempty"`
	DataHex     string `json:"data_hex,omitempty"`
	Hash160Hex  string `json:"hash160_hex,omitempty"`
	TipHeight   int64  `json:"tip_height,omitempty"`
	BlockHeight int64  `json:"block_height,omitempty"`
}

type response struct {
	Ok              bool     `json:"ok"`
	Err             string   `json:"err,omitempty"`
	LegacyTxidHex   string   `json:"legacy_txid,omitempty"`
	WitnessTxidHex  string   `json:"witness_txid,omitempty"`
	ExtendedIDHex   string   `json:"extended_id,omitempty"`
	HasWitness      bool     `json:"has_witness,omitempty"`
	HasSegOp        bool     `json:"has_segop,omitempty"`
	Tier            string   `json:"tier,omitempty"`
	Type            string   `json:"type,omitempty"`
	Labels          []string `json:"labels,omitempty"`
	Ambiguous       bool     `json:"ambiguous,omitempty"`
	Pruned          bool     `json:"pruned,omitempty"`
	Records         []tlvOut `json:"records,omitempty"`
	ScriptHex       string   `json:"script_hex,omitempty"`
}

type tlvOut struct {
	Type      byte   `json:"type"`
	ValueHex  string `json:"value_hex"`
}

func readRequest(r io.Reader) (request, error) {
	var req request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return request{}, errors.Errorf("decode request: %w", err)
	}
	return req, nil
}

func writeResponse(w io.Writer, resp response) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(resp)
}

func fail(c *cli.Context, err error) error {
	writeResponse(c.App.Writer, response{Ok: false, Err: err.Error()})
	return nil
}

func decodeTxFromRequest(c *cli.Context) (*wire.MsgTx, bool) {
	req, err := readRequest(os.Stdin)
	if err != nil {
		fail(c, err)
		return nil, false
	}
	raw, err := hex.DecodeString(req.TxHex)
	if err != nil {
		fail(c, errors.Errorf("bad tx_hex: %w", err))
		return nil, false
	}
	tx, err := wire.DeserializeTx(raw)
	if err != nil {
		fail(c, err)
		return nil, false
	}
	return tx, true
}

var parseCommand = cli.Command{
	Name:  "parse",
	Usage: "decode a tx_hex and report its shape",
	Action: func(c *cli.Context) error {
		tx, ok := decodeTxFromRequest(c)
		if !ok {
			return nil
		}
		tx.Finalize()
		legacy := tx.TxHash()
		witness := tx.WitnessHash()
		extended := tx.ExtendedID()
		writeResponse(c.App.Writer, response{
			Ok:             true,
			LegacyTxidHex:  hex.EncodeToString(legacy[:]),
			WitnessTxidHex: hex.EncodeToString(witness[:]),
			ExtendedIDHex:  hex.EncodeToString(extended[:]),
			HasWitness:     tx.HasWitness(),
			HasSegOp:       tx.HasSegOp(),
		})
		return nil
	},
}

var txidCommand = cli.Command{
	Name:  "txid",
	Usage: "print the three derived identifiers for a tx_hex (same output as parse)",
	Action: parseCommand.Action,
}

var validateCommand = cli.Command{
	Name:  "validate",
	Usage: "run structural validation over a tx_hex",
	Action: func(c *cli.Context) error {
		tx, ok := decodeTxFromRequest(c)
		if !ok {
			return nil
		}
		if err := consensus.CheckTransactionSanity(tx); err != nil {
			writeResponse(c.App.Writer, response{Ok: false, Err: err.Error()})
			return nil
		}
		writeResponse(c.App.Writer, response{Ok: true})
		return nil
	},
}

var classifyCommand = cli.Command{
	Name:  "classify",
	Usage: "classify a tx_hex's output surfaces",
	Action: func(c *cli.Context) error {
		tx, ok := decodeTxFromRequest(c)
		if !ok {
			return nil
		}
		cl := classify.Classify(tx)
		writeResponse(c.App.Writer, response{
			Ok:        true,
			Tier:      string(cl.Tier),
			Type:      cl.Type,
			Labels:    cl.Labels,
			Ambiguous: cl.Ambiguous,
		})
		return nil
	},
}

var retentionCheckCommand = cli.Command{
	Name:  "retention-check",
	Usage: "report whether block_height is prunable at tip_height under the current policy",
	Action: func(c *cli.Context) error {
		req, err := readRequest(os.Stdin)
		if err != nil {
			return fail(c, err)
		}
		pruned := retention.IsPruned(req.TipHeight, req.BlockHeight)
		writeResponse(c.App.Writer, response{Ok: true, Pruned: pruned})
		return nil
	},
}

var tlvDumpCommand = cli.Command{
	Name:  "tlv-dump",
	Usage: "decode data_hex as a TLV record sequence",
	Action: func(c *cli.Context) error {
		req, err := readRequest(os.Stdin)
		if err != nil {
			return fail(c, err)
		}
		raw, err := hex.DecodeString(req.DataHex)
		if err != nil {
			return fail(c, errors.Errorf("bad data_hex: %w", err))
		}
		records, err := wire.SplitTLV(raw)
		if err != nil {
			return fail(c, err)
		}
		out := make([]tlvOut, len(records))
		for i, rec := range records {
			out[i] = tlvOut{Type: rec.Type, ValueHex: hex.EncodeToString(rec.Value)}
		}
		writeResponse(c.App.Writer, response{Ok: true, Records: out})
		return nil
	},
}

var p2pkhCommand = cli.Command{
	Name:  "p2pkh",
	Usage: "build a P2PKH scriptPubKey from a 20-byte hash160_hex",
	Action: func(c *cli.Context) error {
		req, err := readRequest(os.Stdin)
		if err != nil {
			return fail(c, err)
		}
		raw, err := hex.DecodeString(req.Hash160Hex)
		if err != nil || len(raw) != 20 {
			return fail(c, fmt.Errorf("hash160_hex must decode to 20 bytes"))
		}
		var h160 [20]byte
		copy(h160[:], raw)
		script := txscript.PayToPubKeyHash(h160)
		writeResponse(c.App.Writer, response{Ok: true, ScriptHex: hex.EncodeToString(script)})
		return nil
	},
}
