package transaction

import (
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/tidelabs/tidecore/core/state"
	"github.com/tidelabs/tidecore/core/types"
	"golang.org/x/crypto/sha3"
)

// TxType of transaction is determined by a single byte.
type TxType byte

func (t TxType) String() string {
	return "0x" + hex.EncodeToString([]byte{byte(t)})
}

func (t TxType) UInt64() uint64 {
	return uint64(t)
}

const (
	TypeTransfer       TxType = 0x01
	TypeRegisterAsset  TxType = 0x02
	TypeSetAssetStatus TxType = 0x03

	TypeSubmitProposal         TxType = 0x10
	TypeAcknowledgeProposal    TxType = 0x11
	TypeRejectProposal         TxType = 0x12
	TypeEvalProposalState      TxType = 0x13
	TypeSubmitPublicKeys       TxType = 0x14
	TypeAcknowledgeBurned      TxType = 0x15
	TypeWithdrawal             TxType = 0x16
	TypeSetQuorumConfiguration TxType = 0x17
	TypeSetQuorumStatus        TxType = 0x18

	TypeSwap              TxType = 0x20
	TypeConfirmSwap       TxType = 0x21
	TypeCancelSwap        TxType = 0x22
	TypeAddMarketMaker    TxType = 0x23
	TypeRemoveMarketMaker TxType = 0x24
	TypeSetOracleAccount  TxType = 0x25
	TypeSetOracleStatus   TxType = 0x26

	TypeVestedTransfer         TxType = 0x30
	TypeClaim                  TxType = 0x31
	TypeClaimFor               TxType = 0x32
	TypeUpdateVestingSchedules TxType = 0x33
	TypeStopVestingSchedules   TxType = 0x34
)

// Transaction is the envelope of a call. The host verifies the signature and
// passes the origin next to the raw bytes, Nonce only makes equal calls hash differently.
type Transaction struct {
	Nonce uint64
	Type  TxType
	Data  RawData

	decodedData Data
	auth        AuthContext
}

type RawData []byte

type Data interface {
	String() string
	TxType() TxType
	Policy() Policy
	Run(tx *Transaction, context state.Interface, currentBlock uint64) Response
}

func (tx *Transaction) Serialize() ([]byte, error) {
	return rlp.EncodeToBytes(tx)
}

func (tx *Transaction) String() string {
	return fmt.Sprintf("TX nonce:%d origin:%s data:%s", tx.Nonce, tx.auth, tx.decodedData.String())
}

// Sender is the signer of the call, zero for root calls
func (tx *Transaction) Sender() types.Address {
	return tx.auth.Signer
}

func (tx *Transaction) Auth() AuthContext {
	return tx.auth
}

func (tx *Transaction) SetAuth(auth AuthContext) {
	tx.auth = auth
}

func (tx *Transaction) Hash() types.Hash {
	return rlpHash([]interface{}{
		tx.Nonce,
		tx.Type,
		tx.Data,
	})
}

func (tx *Transaction) SetDecodedData(data Data) {
	tx.decodedData = data
}

func (tx *Transaction) GetDecodedData() Data {
	return tx.decodedData
}

func rlpHash(x interface{}) (h types.Hash) {
	hw := sha3.NewLegacyKeccak256()
	err := rlp.Encode(hw, x)
	if err != nil {
		panic(err)
	}
	hw.Sum(h[:0])
	return h
}
