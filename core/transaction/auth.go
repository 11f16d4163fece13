package transaction

import (
	"fmt"

	"github.com/tidelabs/tidecore/core/code"
	"github.com/tidelabs/tidecore/core/state"
	"github.com/tidelabs/tidecore/core/types"
)

type Origin byte

const (
	OriginNone Origin = iota
	OriginRoot
	OriginSigned
)

func (o Origin) String() string {
	switch o {
	case OriginRoot:
		return "root"
	case OriginSigned:
		return "signed"
	}
	return "none"
}

// AuthContext is the origin of a call as verified by the host
type AuthContext struct {
	Origin Origin
	Signer types.Address
}

func RootAuth() AuthContext {
	return AuthContext{Origin: OriginRoot}
}

func SignedAuth(signer types.Address) AuthContext {
	return AuthContext{Origin: OriginSigned, Signer: signer}
}

func (a AuthContext) IsRoot() bool {
	return a.Origin == OriginRoot
}

func (a AuthContext) IsSigned() bool {
	return a.Origin == OriginSigned
}

func (a AuthContext) String() string {
	if a.IsSigned() {
		return fmt.Sprintf("signed:%s", a.Signer)
	}
	return a.Origin.String()
}

// Policy decides whether a call with the given origin may run against the state
type Policy func(auth AuthContext, context *state.CheckState) *code.Error

func badOrigin(auth AuthContext, required string) *code.Error {
	return code.NewError(code.BadOrigin, fmt.Sprintf("origin %s is not allowed, required %s", auth, required),
		code.NewBadOrigin(auth.String(), required))
}

func RootPolicy(auth AuthContext, _ *state.CheckState) *code.Error {
	if auth.IsRoot() {
		return nil
	}
	return badOrigin(auth, "root")
}

func SignedPolicy(auth AuthContext, _ *state.CheckState) *code.Error {
	if auth.IsSigned() {
		return nil
	}
	return badOrigin(auth, "signed")
}

// RootOrSignedPolicy lets the call decide on the signer itself
func RootOrSignedPolicy(auth AuthContext, _ *state.CheckState) *code.Error {
	if auth.IsRoot() || auth.IsSigned() {
		return nil
	}
	return badOrigin(auth, "root|signed")
}

func RootOrAssetOwnerPolicy(auth AuthContext, context *state.CheckState) *code.Error {
	if auth.IsRoot() {
		return nil
	}
	if owner := context.Assets().Owner(); auth.IsSigned() && owner != nil && *owner == auth.Signer {
		return nil
	}
	return badOrigin(auth, "root|asset_owner")
}

func RootOrOraclePolicy(auth AuthContext, context *state.CheckState) *code.Error {
	if auth.IsRoot() {
		return nil
	}
	if !auth.IsSigned() {
		return badOrigin(auth, "root|oracle")
	}
	if context.Oracle().Account() != auth.Signer {
		return code.NewError(code.NotOracleAuthority, fmt.Sprintf("%s is not the oracle account", auth.Signer),
			code.NewNotOracleAuthority(auth.Signer.String()))
	}
	return nil
}

func QuorumMemberPolicy(auth AuthContext, context *state.CheckState) *code.Error {
	if !auth.IsSigned() {
		return badOrigin(auth, "quorum member")
	}
	if !context.Quorum().IsMember(auth.Signer) {
		return code.NewError(code.NotMember, fmt.Sprintf("%s is not a quorum member", auth.Signer),
			code.NewNotMember(auth.Signer.String()))
	}
	return nil
}
