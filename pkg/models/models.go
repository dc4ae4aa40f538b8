package models

// Account is the application-visible shape of one provider account.
type Account struct {
	Address   string `json:"address"`
	PublicKey string `json:"publicKey"`
	Group     int    `json:"group"`
}

// Destination is one transfer output.
type Destination struct {
	Address        string  `json:"address"`
	AttoAlphAmount string  `json:"attoAlphAmount"`
	Tokens         []Token `json:"tokens,omitempty"`
	LockTime       *int64  `json:"lockTime,omitempty"`
	Message        string  `json:"message,omitempty"`
}

// Token is an (id, amount) pair attached to a destination.
type Token struct {
	ID     string `json:"id"`
	Amount string `json:"amount"`
}

type SignTransferTxParams struct {
	SignerAddress string        `json:"signerAddress"`
	Destinations  []Destination `json:"destinations"`
	GasAmount     *int          `json:"gasAmount,omitempty"`
	GasPrice      string        `json:"gasPrice,omitempty"`
}

type SignContractCreationTxParams struct {
	SignerAddress         string `json:"signerAddress"`
	Bytecode              string `json:"bytecode"`
	InitialAttoAlphAmount string `json:"initialAttoAlphAmount,omitempty"`
	IssueTokenAmount      string `json:"issueTokenAmount,omitempty"`
	GasAmount             *int   `json:"gasAmount,omitempty"`
	GasPrice              string `json:"gasPrice,omitempty"`
}

type SignScriptTxParams struct {
	SignerAddress  string `json:"signerAddress"`
	Bytecode       string `json:"bytecode"`
	AttoAlphAmount string `json:"attoAlphAmount,omitempty"`
	GasAmount      *int   `json:"gasAmount,omitempty"`
	GasPrice       string `json:"gasPrice,omitempty"`
}

type SignUnsignedTxParams struct {
	SignerAddress string `json:"signerAddress"`
	UnsignedTx    string `json:"unsignedTx"`
}

type SignHexStringParams struct {
	SignerAddress string `json:"signerAddress"`
	HexString     string `json:"hexString"`
}

type SignMessageParams struct {
	SignerAddress string `json:"signerAddress"`
	Message       string `json:"message"`
}

// SignTxResult is the shared result shape of every transaction-signing
// method: the serialized unsigned transaction, its id and the signature.
type SignTxResult struct {
	UnsignedTx string `json:"unsignedTx"`
	TxID       string `json:"txId"`
	Signature  string `json:"signature"`
}

// SignMessageResult carries only the signature.
type SignMessageResult struct {
	Signature string `json:"signature"`
}
