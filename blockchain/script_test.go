package blockchain

import (
	"testing"

	"github.com/chenzhuo112/MagnaChain-dev-master/common"
	"github.com/stretchr/testify/require"
)

func TestMortgageScriptRoundTrip(t *testing.T) {
	branch := common.HashBytes([]byte("branch-a"))
	pkh := PubKeyHash([]byte("pubkey"))

	s, err := BuildMortgageScript(branch, 42, pkh)
	require.NoError(t, err)

	gotBranch, gotHeight, gotPkh, ok := ParseMortgageScript(s)
	require.True(t, ok)
	require.Equal(t, branch, gotBranch)
	require.Equal(t, int64(42), gotHeight)
	require.Equal(t, pkh, gotPkh)
}

func TestMineCoinScriptRoundTrip(t *testing.T) {
	fromTxId := common.HashBytes([]byte("tx-1"))
	pkh := PubKeyHash([]byte("pubkey-2"))

	s, err := BuildMineCoinScript(fromTxId, 7, pkh)
	require.NoError(t, err)

	gotTxId, gotHeight, gotPkh, ok := ParseMineCoinScript(s)
	require.True(t, ok)
	require.Equal(t, fromTxId, gotTxId)
	require.Equal(t, int64(7), gotHeight)
	require.Equal(t, pkh, gotPkh)
}

func TestRedeemScriptRoundTrip(t *testing.T) {
	fromTxId := common.HashBytes([]byte("tx-redeem"))
	s, err := BuildRedeemMarkerScript(fromTxId)
	require.NoError(t, err)

	got, ok := ParseRedeemScript(s)
	require.True(t, ok)
	require.Equal(t, fromTxId, got)
}

func TestCoinBranchTranScript(t *testing.T) {
	branch := common.HashBytes([]byte("branch-b"))
	s, err := BuildTransBranchScript(branch)
	require.NoError(t, err)
	require.True(t, IsCoinBranchTranScript(s))

	mainS, err := BuildTransBranchScript(common.MainBranchID)
	require.NoError(t, err)
	require.True(t, IsCoinBranchTranScript(mainS))
}

func TestMortgageScriptRejectsWrongShape(t *testing.T) {
	_, _, _, ok := ParseMortgageScript(Script{0x01, 0x02, 0x03})
	require.False(t, ok)
}
