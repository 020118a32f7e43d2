package fhe

import (
	"math/big"
	"strconv"

	"github.com/billat883/ArtSync/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

const (
	// DecryptionDomainName and DecryptionDomainVersion identify the typed
	// data domain of user decryption authorizations.
	DecryptionDomainName    = "Decryption"
	DecryptionDomainVersion = "1"

	userDecryptPrimaryType = "UserDecryptRequestVerification"
)

// DecryptionDomain is the EIP-712 domain of the decryption service.
type DecryptionDomain struct {
	ChainID           uint64         `json:"chainId"`
	VerifyingContract common.Address `json:"verifyingContract"`
}

// MaxDurationDays bounds the validity of a user decryption authorization.
const MaxDurationDays = 3650

// UserDecryptAuthorization is the payload a requester signs to allow the
// decryption service to re-encrypt values of the listed contracts to the
// ephemeral public key, from StartTimestamp for DurationDays days.
type UserDecryptAuthorization struct {
	PublicKey         types.HexBytes
	ContractAddresses []common.Address
	StartTimestamp    int64
	DurationDays      uint64
}

// TypedData returns the EIP-712 payload for the authorization under domain.
func (a *UserDecryptAuthorization) TypedData(domain DecryptionDomain) apitypes.TypedData {
	contracts := make([]interface{}, len(a.ContractAddresses))
	for i, addr := range a.ContractAddresses {
		contracts[i] = addr.Hex()
	}
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			userDecryptPrimaryType: {
				{Name: "publicKey", Type: "bytes"},
				{Name: "contractAddresses", Type: "address[]"},
				{Name: "contractsChainId", Type: "uint256"},
				{Name: "startTimestamp", Type: "uint256"},
				{Name: "durationDays", Type: "uint256"},
			},
		},
		PrimaryType: userDecryptPrimaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              DecryptionDomainName,
			Version:           DecryptionDomainVersion,
			ChainId:           (*math.HexOrDecimal256)(new(big.Int).SetUint64(domain.ChainID)),
			VerifyingContract: domain.VerifyingContract.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"publicKey":         hexutil.Encode(a.PublicKey),
			"contractAddresses": contracts,
			"contractsChainId":  strconv.FormatUint(domain.ChainID, 10),
			"startTimestamp":    strconv.FormatInt(a.StartTimestamp, 10),
			"durationDays":      strconv.FormatUint(a.DurationDays, 10),
		},
	}
}

// Authorization extracts the signed payload of a request.
func (r *UserDecryptRequest) Authorization() *UserDecryptAuthorization {
	return &UserDecryptAuthorization{
		PublicKey:         r.PublicKey,
		ContractAddresses: r.ContractAddresses,
		StartTimestamp:    r.StartTimestamp,
		DurationDays:      r.DurationDays,
	}
}
