package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"

	"github.com/defenwycke/segregated-op-return/chainhash"
	"github.com/defenwycke/segregated-op-return/wire"
)

func withStdin(t *testing.T, body []byte, fn func()) {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, err = w.Write(body)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	old := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = old }()

	fn()
}

func runCommand(t *testing.T, cmd cli.Command, reqBody interface{}) response {
	t.Helper()

	body, err := json.Marshal(reqBody)
	require.NoError(t, err)

	var out bytes.Buffer
	app := cli.NewApp()
	app.Writer = &out
	app.Commands = []cli.Command{cmd}

	withStdin(t, body, func() {
		require.NoError(t, app.Run([]string{"segop-cli", cmd.Name}))
	})

	var resp response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	return resp
}

func sampleNoWitnessTxHex(t *testing.T) string {
	t.Helper()
	tx := wire.NewMsgTx(1)
	var prevHash chainhash.Hash
	prevHash[0] = 7
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&prevHash, 0), []byte{0x51}, nil))
	tx.AddTxOut(wire.NewTxOut(5000, []byte{0x76, 0xa9}))
	return hex.EncodeToString(tx.Bytes())
}

func TestParseValidateClassifyHappyPath(t *testing.T) {
	txHex := sampleNoWitnessTxHex(t)

	parsed := runCommand(t, parseCommand, request{TxHex: txHex})
	require.True(t, parsed.Ok)
	require.NotEmpty(t, parsed.LegacyTxidHex)
	require.Equal(t, parsed.LegacyTxidHex, parsed.WitnessTxidHex)

	validated := runCommand(t, validateCommand, request{TxHex: txHex})
	require.True(t, validated.Ok)

	classified := runCommand(t, classifyCommand, request{TxHex: txHex})
	require.True(t, classified.Ok)
	require.Equal(t, "pay.standard", classified.Type)
}

func TestParseRejectsBadHex(t *testing.T) {
	resp := runCommand(t, parseCommand, request{TxHex: "not-hex"})
	require.False(t, resp.Ok)
	require.NotEmpty(t, resp.Err)
}

func TestRetentionCheck(t *testing.T) {
	resp := runCommand(t, retentionCheckCommand, request{TipHeight: 10000, BlockHeight: 100})
	require.True(t, resp.Ok)
	require.True(t, resp.Pruned)

	resp = runCommand(t, retentionCheckCommand, request{TipHeight: 100, BlockHeight: 99})
	require.True(t, resp.Ok)
	require.False(t, resp.Pruned)
}

func TestTLVDump(t *testing.T) {
	data := []byte{0x01, 0x02, 0xAA, 0xBB}
	resp := runCommand(t, tlvDumpCommand, request{DataHex: hex.EncodeToString(data)})
	require.True(t, resp.Ok)
	require.Len(t, resp.Records, 1)
	require.Equal(t, byte(0x01), resp.Records[0].Type)
	require.Equal(t, "aabb", resp.Records[0].ValueHex)
}

func TestP2PKH(t *testing.T) {
	hash160 := make([]byte, 20)
	resp := runCommand(t, p2pkhCommand, request{Hash160Hex: hex.EncodeToString(hash160)})
	require.True(t, resp.Ok)
	require.NotEmpty(t, resp.ScriptHex)
}
