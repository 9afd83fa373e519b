package rpc

import (
	"encoding/hex"
	"encoding/json"

	"github.com/strmfi/vestd/internal/core/vesting"
)

// Engine is the subset of *vesting.Engine the RPC handlers call.
// Defined as an interface so handlers can be tested against a fake.
type Engine interface {
	Create(ctx *RpcContext, req vesting.CreateRequest, contractID vesting.Principal) (vesting.Result, vesting.Principal, error)
	Withdraw(ctx *RpcContext, escrow vesting.Principal, authority vesting.Principal, amount uint64) (vesting.Result, error)
	TopUp(ctx *RpcContext, escrow vesting.Principal, authority vesting.Principal, amount uint64) (vesting.Result, error)
	TransferRecipient(ctx *RpcContext, escrow, authority, newRecipient, newRecipientTokens vesting.Principal) (vesting.Result, error)
	Cancel(ctx *RpcContext, escrow, authority vesting.Principal) (vesting.Result, error)
	ContractInfo(ctx *RpcContext, escrow vesting.Principal) (*vesting.Contract, error)
}

// engineAdapter wraps *vesting.Engine to satisfy Engine, supplying the
// wall-clock snapshot from e.Clock the way apply_*.go expects the
// caller (here, the RPC transport) to do once per instruction.
type engineAdapter struct {
	engine *vesting.Engine
}

// NewEngineAdapter adapts a *vesting.Engine for use by the RPC layer.
func NewEngineAdapter(engine *vesting.Engine) Engine {
	return &engineAdapter{engine: engine}
}

func (a *engineAdapter) actx(authority, escrow vesting.Principal) vesting.ApplyContext {
	return vesting.ApplyContext{Now: a.engine.Clock.Now(), Authority: authority, Escrow: escrow}
}

func (a *engineAdapter) Create(ctx *RpcContext, req vesting.CreateRequest, contractID vesting.Principal) (vesting.Result, vesting.Principal, error) {
	actx := a.actx(req.Sender, contractID)
	res, err := a.engine.Create(ctx.Context, actx, req)
	if !res.IsSuccess() {
		return res, vesting.Principal{}, err
	}
	escrow, derivErr := a.engine.Escrow.DeriveEscrow(vesting.VersionCurrent, contractID)
	if derivErr != nil {
		return res, vesting.Principal{}, derivErr
	}
	return res, escrow, err
}

func (a *engineAdapter) Withdraw(ctx *RpcContext, escrow, authority vesting.Principal, amount uint64) (vesting.Result, error) {
	return a.engine.Withdraw(ctx.Context, a.actx(authority, escrow), amount)
}

func (a *engineAdapter) TopUp(ctx *RpcContext, escrow, authority vesting.Principal, amount uint64) (vesting.Result, error) {
	return a.engine.TopUp(ctx.Context, a.actx(authority, escrow), amount)
}

func (a *engineAdapter) TransferRecipient(ctx *RpcContext, escrow, authority, newRecipient, newRecipientTokens vesting.Principal) (vesting.Result, error) {
	return a.engine.TransferRecipient(ctx.Context, a.actx(authority, escrow), newRecipient, newRecipientTokens)
}

func (a *engineAdapter) Cancel(ctx *RpcContext, escrow, authority vesting.Principal) (vesting.Result, error) {
	return a.engine.Cancel(ctx.Context, a.actx(authority, escrow))
}

func (a *engineAdapter) ContractInfo(ctx *RpcContext, escrow vesting.Principal) (*vesting.Contract, error) {
	return a.engine.Store.Load(ctx.Context, escrow)
}

// principalJSON is the wire representation of a vesting.Principal:
// lowercase hex, the only lossless round trip available since
// bridge/address.Encode is a one-way display hash.
type principalJSON string

func decodePrincipal(s principalJSON) (vesting.Principal, *RpcError) {
	var p vesting.Principal
	b, err := hex.DecodeString(string(s))
	if err != nil || len(b) != len(p) {
		return p, RpcErrorInvalidParams("principal must be 64 hex characters")
	}
	copy(p[:], b)
	return p, nil
}

func encodePrincipal(p vesting.Principal) principalJSON {
	return principalJSON(hex.EncodeToString(p[:]))
}

// registerAllMethods wires every vestd JSON-RPC method into the
// registry. Called once from NewServer.
func (s *Server) registerAllMethods() {
	s.registry.Register("contract_create", &createHandler{engine: s.engine, events: s.events})
	s.registry.Register("contract_withdraw", &withdrawHandler{engine: s.engine, events: s.events})
	s.registry.Register("contract_topup", &topupHandler{engine: s.engine, events: s.events})
	s.registry.Register("contract_transfer_recipient", &transferHandler{engine: s.engine, events: s.events})
	s.registry.Register("contract_cancel", &cancelHandler{engine: s.engine, events: s.events})
	s.registry.Register("contract_info", &infoHandler{engine: s.engine})
	s.registry.Register("server_info", &serverInfoHandler{version: s.version})
}

// --- contract_create ---

type createParamsJSON struct {
	ContractID              principalJSON `json:"contract_id"`
	Sender                  principalJSON `json:"sender"`
	SenderTokens            principalJSON `json:"sender_tokens"`
	Recipient               principalJSON `json:"recipient"`
	RecipientTokens         principalJSON `json:"recipient_tokens"`
	Mint                    principalJSON `json:"mint"`
	StreamflowTreasury      principalJSON `json:"streamflow_treasury"`
	StreamflowTreasuryTokens principalJSON `json:"streamflow_treasury_tokens"`
	Partner                 principalJSON `json:"partner,omitempty"`
	PartnerTokens           principalJSON `json:"partner_tokens,omitempty"`

	StartTime               int64  `json:"start_time"`
	Cliff                   int64  `json:"cliff"`
	CliffAmount             uint64 `json:"cliff_amount"`
	Period                  int64  `json:"period"`
	AmountPerPeriod         uint64 `json:"amount_per_period"`
	NetAmountDeposited      uint64 `json:"net_amount_deposited"`
	CancelableBySender      bool   `json:"cancelable_by_sender"`
	CancelableByRecipient   bool   `json:"cancelable_by_recipient"`
	TransferableBySender    bool   `json:"transferable_by_sender"`
	TransferableByRecipient bool   `json:"transferable_by_recipient"`
	AutomaticWithdrawal     bool   `json:"automatic_withdrawal"`
	CanTopup                bool   `json:"can_topup"`
	StreamName              string `json:"stream_name"`
}

type createResult struct {
	Result      int           `json:"result"`
	Message     string        `json:"message"`
	EscrowTokens principalJSON `json:"escrow_tokens,omitempty"`
}

type createHandler struct {
	engine Engine
	events *eventHub
}

func (h *createHandler) RequiredRole() Role           { return RoleUser }
func (h *createHandler) SupportedApiVersions() []int  { return []int{ApiVersion1} }

func (h *createHandler) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var in createParamsJSON
	if err := json.Unmarshal(params, &in); err != nil {
		return nil, RpcErrorInvalidParams(err.Error())
	}

	name, err := vesting.NewStreamName(in.StreamName)
	if err != nil {
		return nil, RpcErrorInvalidParams(err.Error())
	}

	principals, rerr := decodeCreatePrincipals(in)
	if rerr != nil {
		return nil, rerr
	}
	contractID, rerr := decodePrincipal(in.ContractID)
	if rerr != nil {
		return nil, rerr
	}

	req := vesting.CreateRequest{
		Params: vesting.CreateParams{
			StartTime:               in.StartTime,
			Cliff:                   in.Cliff,
			CliffAmount:             in.CliffAmount,
			Period:                  in.Period,
			AmountPerPeriod:         in.AmountPerPeriod,
			NetAmountDeposited:      in.NetAmountDeposited,
			CancelableBySender:      in.CancelableBySender,
			CancelableByRecipient:   in.CancelableByRecipient,
			TransferableBySender:    in.TransferableBySender,
			TransferableByRecipient: in.TransferableByRecipient,
			AutomaticWithdrawal:     in.AutomaticWithdrawal,
			CanTopup:                in.CanTopup,
			StreamName:              name,
		},
		Principals: principals,
		Sender:     principals.Sender,
	}

	res, escrow, err := h.engine.Create(ctx, req, contractID)
	if err != nil && res.IsSuccess() {
		return nil, RpcErrorInternal(err.Error())
	}
	out := createResult{Result: int(res), Message: res.Message()}
	if res.IsSuccess() {
		out.EscrowTokens = encodePrincipal(escrow)
		h.events.broadcast(ContractEvent{
			Type: "settlement", Escrow: encodePrincipal(escrow),
			Instruction: instructionName(vesting.TagCreate), Result: int(res),
			Amount: req.Params.NetAmountDeposited,
		})
	}
	return out, nil
}

func decodeCreatePrincipals(in createParamsJSON) (vesting.Principals, *RpcError) {
	var p vesting.Principals
	var rerr *RpcError
	assign := func(dst *vesting.Principal, src principalJSON, required bool) {
		if rerr != nil {
			return
		}
		if src == "" {
			if required {
				rerr = RpcErrorInvalidParams("missing required principal")
			}
			return
		}
		v, e := decodePrincipal(src)
		if e != nil {
			rerr = e
			return
		}
		*dst = v
	}
	assign(&p.Sender, in.Sender, true)
	assign(&p.SenderTokens, in.SenderTokens, true)
	assign(&p.Recipient, in.Recipient, true)
	assign(&p.RecipientTokens, in.RecipientTokens, true)
	assign(&p.Mint, in.Mint, true)
	assign(&p.StreamflowTreasury, in.StreamflowTreasury, true)
	assign(&p.StreamflowTreasuryTokens, in.StreamflowTreasuryTokens, true)
	assign(&p.Partner, in.Partner, false)
	assign(&p.PartnerTokens, in.PartnerTokens, false)
	return p, rerr
}

// --- contract_withdraw / contract_topup share a payload shape ---

type amountRequest struct {
	Escrow    principalJSON `json:"escrow"`
	Authority principalJSON `json:"authority"`
	Amount    uint64        `json:"amount"`
}

type amountResponse struct {
	Result  int    `json:"result"`
	Message string `json:"message"`
}

func decodeAmountRequest(params json.RawMessage) (escrow, authority vesting.Principal, amount uint64, rerr *RpcError) {
	var in amountRequest
	if err := json.Unmarshal(params, &in); err != nil {
		rerr = RpcErrorInvalidParams(err.Error())
		return
	}
	if escrow, rerr = decodePrincipal(in.Escrow); rerr != nil {
		return
	}
	if authority, rerr = decodePrincipal(in.Authority); rerr != nil {
		return
	}
	amount = in.Amount
	return
}

type withdrawHandler struct {
	engine Engine
	events *eventHub
}

func (h *withdrawHandler) RequiredRole() Role          { return RoleUser }
func (h *withdrawHandler) SupportedApiVersions() []int { return []int{ApiVersion1} }

func (h *withdrawHandler) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	escrow, authority, amount, rerr := decodeAmountRequest(params)
	if rerr != nil {
		return nil, rerr
	}
	res, err := h.engine.Withdraw(ctx, escrow, authority, amount)
	if err != nil && !res.IsSuccess() {
		return nil, resultToRpcError(res, err)
	}
	if res.IsSuccess() {
		h.events.broadcast(ContractEvent{
			Type: "settlement", Escrow: encodePrincipal(escrow),
			Instruction: instructionName(vesting.TagWithdraw), Result: int(res), Amount: amount,
		})
	}
	return amountResponse{Result: int(res), Message: res.Message()}, nil
}

type topupHandler struct {
	engine Engine
	events *eventHub
}

func (h *topupHandler) RequiredRole() Role          { return RoleUser }
func (h *topupHandler) SupportedApiVersions() []int { return []int{ApiVersion1} }

func (h *topupHandler) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	escrow, authority, amount, rerr := decodeAmountRequest(params)
	if rerr != nil {
		return nil, rerr
	}
	res, err := h.engine.TopUp(ctx, escrow, authority, amount)
	if err != nil && !res.IsSuccess() {
		return nil, resultToRpcError(res, err)
	}
	if res.IsSuccess() {
		h.events.broadcast(ContractEvent{
			Type: "settlement", Escrow: encodePrincipal(escrow),
			Instruction: instructionName(vesting.TagTopUp), Result: int(res), Amount: amount,
		})
	}
	return amountResponse{Result: int(res), Message: res.Message()}, nil
}

// --- contract_transfer_recipient ---

type transferRequest struct {
	Escrow             principalJSON `json:"escrow"`
	Authority          principalJSON `json:"authority"`
	NewRecipient       principalJSON `json:"new_recipient"`
	NewRecipientTokens principalJSON `json:"new_recipient_tokens"`
}

type transferHandler struct {
	engine Engine
	events *eventHub
}

func (h *transferHandler) RequiredRole() Role          { return RoleUser }
func (h *transferHandler) SupportedApiVersions() []int { return []int{ApiVersion1} }

func (h *transferHandler) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var in transferRequest
	if err := json.Unmarshal(params, &in); err != nil {
		return nil, RpcErrorInvalidParams(err.Error())
	}
	escrow, rerr := decodePrincipal(in.Escrow)
	if rerr != nil {
		return nil, rerr
	}
	authority, rerr := decodePrincipal(in.Authority)
	if rerr != nil {
		return nil, rerr
	}
	newRecipient, rerr := decodePrincipal(in.NewRecipient)
	if rerr != nil {
		return nil, rerr
	}
	newRecipientTokens, rerr := decodePrincipal(in.NewRecipientTokens)
	if rerr != nil {
		return nil, rerr
	}

	res, err := h.engine.TransferRecipient(ctx, escrow, authority, newRecipient, newRecipientTokens)
	if err != nil && !res.IsSuccess() {
		return nil, resultToRpcError(res, err)
	}
	if res.IsSuccess() {
		h.events.broadcast(ContractEvent{
			Type: "settlement", Escrow: encodePrincipal(escrow),
			Instruction: instructionName(vesting.TagTransfer), Result: int(res),
		})
	}
	return amountResponse{Result: int(res), Message: res.Message()}, nil
}

// --- contract_cancel ---

type cancelRequest struct {
	Escrow    principalJSON `json:"escrow"`
	Authority principalJSON `json:"authority"`
}

type cancelHandler struct {
	engine Engine
	events *eventHub
}

func (h *cancelHandler) RequiredRole() Role          { return RoleUser }
func (h *cancelHandler) SupportedApiVersions() []int { return []int{ApiVersion1} }

func (h *cancelHandler) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var in cancelRequest
	if err := json.Unmarshal(params, &in); err != nil {
		return nil, RpcErrorInvalidParams(err.Error())
	}
	escrow, rerr := decodePrincipal(in.Escrow)
	if rerr != nil {
		return nil, rerr
	}
	authority, rerr := decodePrincipal(in.Authority)
	if rerr != nil {
		return nil, rerr
	}

	res, err := h.engine.Cancel(ctx, escrow, authority)
	if err != nil && !res.IsSuccess() {
		return nil, resultToRpcError(res, err)
	}
	if res.IsSuccess() {
		h.events.broadcast(ContractEvent{
			Type: "settlement", Escrow: encodePrincipal(escrow),
			Instruction: instructionName(vesting.TagCancel), Result: int(res),
		})
	}
	return amountResponse{Result: int(res), Message: res.Message()}, nil
}

// --- contract_info ---

type infoRequest struct {
	Escrow principalJSON `json:"escrow"`
}

type infoResponse struct {
	StreamName              string        `json:"stream_name"`
	EndTime                 int64         `json:"end_time"`
	NetAmountDeposited      uint64        `json:"net_amount_deposited"`
	AmountWithdrawn         uint64        `json:"amount_withdrawn"`
	StreamflowFeeTotal      uint64        `json:"streamflow_fee_total"`
	StreamflowFeeWithdrawn  uint64        `json:"streamflow_fee_withdrawn"`
	PartnerFeeTotal         uint64        `json:"partner_fee_total"`
	PartnerFeeWithdrawn     uint64        `json:"partner_fee_withdrawn"`
	CanceledAt              int64         `json:"canceled_at,omitempty"`
	Recipient               principalJSON `json:"recipient"`
}

type infoHandler struct{ engine Engine }

func (h *infoHandler) RequiredRole() Role          { return RoleGuest }
func (h *infoHandler) SupportedApiVersions() []int { return []int{ApiVersion1} }

func (h *infoHandler) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var in infoRequest
	if err := json.Unmarshal(params, &in); err != nil {
		return nil, RpcErrorInvalidParams(err.Error())
	}
	escrow, rerr := decodePrincipal(in.Escrow)
	if rerr != nil {
		return nil, rerr
	}

	c, err := h.engine.ContractInfo(ctx, escrow)
	if err != nil {
		return nil, RpcErrorContractNotFound(err.Error())
	}

	return infoResponse{
		StreamName:             c.Params.StreamName.String(),
		EndTime:                c.EndTime,
		NetAmountDeposited:     c.Params.NetAmountDeposited,
		AmountWithdrawn:        c.AmountWithdrawn,
		StreamflowFeeTotal:     c.StreamflowFeeTotal,
		StreamflowFeeWithdrawn: c.StreamflowFeeWithdrawn,
		PartnerFeeTotal:        c.PartnerFeeTotal,
		PartnerFeeWithdrawn:    c.PartnerFeeWithdrawn,
		CanceledAt:             c.CanceledAt,
		Recipient:              encodePrincipal(c.Principals.Recipient),
	}, nil
}

// --- server_info ---

type serverInfoResponse struct {
	Version string `json:"version"`
	Status  string `json:"status"`
}

type serverInfoHandler struct{ version string }

func (h *serverInfoHandler) RequiredRole() Role          { return RoleGuest }
func (h *serverInfoHandler) SupportedApiVersions() []int { return []int{ApiVersion1} }

func (h *serverInfoHandler) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	return serverInfoResponse{Version: h.version, Status: "up"}, nil
}

// resultToRpcError maps a non-success vesting.Result to an RpcError,
// preserving the numeric Result code in Data for programmatic callers.
func resultToRpcError(res vesting.Result, err error) *RpcError {
	rerr := RpcErrorInternal(res.Message())
	if res == vesting.ResultUnauthorized {
		rerr = RpcErrorUnauthorized(res.Message())
	}
	if res == vesting.ResultUninitializedAccount {
		rerr = RpcErrorContractNotFound(res.Message())
	}
	rerr.Data = map[string]int{"result_code": int(res)}
	return rerr
}
