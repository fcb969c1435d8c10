package blockchain

// SetTxCodecHooks wires this module's external-collaborator codec hooks to
// the base engine's real transaction type (spec.md 1, Non-goals: "a
// byte-exact transaction codec... is out of scope; this module calls it
// through a hook"). Call once at node startup, before any verification runs.
func SetTxCodecHooks(decodeHex func(hexStr string) (Tx, error), decodeBytes func([]byte) (Tx, error)) {
	decodeHexTx = decodeHex
	decodeTxHook = decodeBytes
}

// DecodeTx exposes the hex-tx codec hook to callers outside this package
// (the inbound RPC server decoding a request parameter into a Tx).
func DecodeTx(hexStr string) (Tx, error) {
	return decodeHexTx(hexStr)
}
