package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/FactomWyomingEntity/prosper-stake/accounting"
	"github.com/FactomWyomingEntity/prosper-stake/database"
	"github.com/FactomWyomingEntity/prosper-stake/dayclock"
	"github.com/FactomWyomingEntity/prosper-stake/daykeeper"
	"github.com/FactomWyomingEntity/prosper-stake/rates"
	"github.com/FactomWyomingEntity/prosper-stake/roles"
	"github.com/ethereum/go-ethereum/common"
	rpc "github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const (
	MaxLimit int32 = 200
)

// LedgerService is the json-rpc surface of the ledger, registered as
// "ledger". Mutating calls act for the account behind the X-Api-Key header.
type LedgerService struct {
	s *HttpServices
}

func (s *HttpServices) APIMux() *rpc.Server {
	apiMux := rpc.NewServer()
	apiMux.RegisterCodec(json2.NewCustomCodecWithErrorMapper(rpc.DefaultEncoderSelector, mapError), "application/json")
	apiMux.RegisterAfterFunc(func(i *rpc.RequestInfo) {
		kind := accounting.Kind(i.Error)
		if kind == "" {
			kind = "ok"
		}
		apiRequests.WithLabelValues(i.Method, kind).Inc()
		if kind == "Internal" {
			wLog.WithError(i.Error).WithField("method", i.Method).Error("api call failed")
		}
	})
	err := apiMux.RegisterService(&LedgerService{s: s}, "ledger")
	if err != nil {
		log.WithError(err).Fatal("failed to create api")
	}

	return apiMux
}

// mapError attaches the error kind so clients can tell business errors
// apart without parsing messages.
func mapError(err error) error {
	return &json2.Error{
		Code:    json2.E_SERVER,
		Message: err.Error(),
		Data:    accounting.Kind(err),
	}
}

func (s *HttpServices) caller(r *http.Request) (common.Address, error) {
	key := r.Header.Get(APIKeyHdr)
	if key == "" || s.Auth == nil {
		return common.Address{}, fmt.Errorf("%w: no api key", accounting.ErrUnauthorized)
	}
	acct, err := s.Auth.Authenticate(key)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %s", accounting.ErrUnauthorized, err.Error())
	}
	return acct, nil
}

// account resolves an explicit account argument, falling back to the caller
func (s *HttpServices) account(r *http.Request, acct string) (common.Address, error) {
	if acct == "" {
		return s.caller(r)
	}
	return parseAddress(acct)
}

func parseAddress(v string) (common.Address, error) {
	if !common.IsHexAddress(v) {
		return common.Address{}, fmt.Errorf("%w: %q", accounting.ErrInvalidAddress, v)
	}
	return common.HexToAddress(v), nil
}

func parseAmount(v string) (*uint256.Int, error) {
	a, err := database.ParseAmount(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", accounting.ErrInvalidAmount, err.Error())
	}
	return a.Int(), nil
}

// Amount is a raw integer amount plus its human readable form
type Amount struct {
	Amount  string `json:"amount"`
	Display string `json:"display"`
}

func display(v *uint256.Int, decimals int32) Amount {
	return Amount{
		Amount:  v.Dec(),
		Display: decimal.NewFromBigInt(v.ToBig(), -decimals).String(),
	}
}

func (s *HttpServices) decimalsOf(symbol string) int32 {
	if symbol == s.Ledger.StakeToken {
		return s.stakeDecimals
	}
	return s.payoutDecimals
}

type StakeArgs struct {
	Amount string `json:"amount"`
	Force  bool   `json:"force"`
}

type ForceArgs struct {
	Force bool `json:"force"`
}

type AccountArgs struct {
	Account string `json:"account"`
}

type CheckReply struct {
	OK     bool   `json:"ok"`
	Kind   string `json:"kind,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func check(ok bool, err error, reply *CheckReply) error {
	reply.OK = ok
	if err == nil {
		return nil
	}
	reply.Kind = accounting.Kind(err)
	if reply.Kind == "Internal" {
		return err
	}
	reply.Reason = err.Error()
	return nil
}

func (l *LedgerService) Stake(r *http.Request, args *StakeArgs, reply *Amount) error {
	caller, err := l.s.caller(r)
	if err != nil {
		return err
	}
	amount, err := parseAmount(args.Amount)
	if err != nil {
		return err
	}
	if err := l.s.Ledger.Stake(caller, amount, args.Force); err != nil {
		return err
	}
	return l.stakeOf(caller, reply)
}

func (l *LedgerService) Unstake(r *http.Request, args *StakeArgs, reply *Amount) error {
	caller, err := l.s.caller(r)
	if err != nil {
		return err
	}
	amount, err := parseAmount(args.Amount)
	if err != nil {
		return err
	}
	if err := l.s.Ledger.Unstake(caller, amount, args.Force); err != nil {
		return err
	}
	return l.stakeOf(caller, reply)
}

func (l *LedgerService) UnstakeAll(r *http.Request, args *ForceArgs, reply *Amount) error {
	caller, err := l.s.caller(r)
	if err != nil {
		return err
	}
	if err := l.s.Ledger.UnstakeAll(caller, args.Force); err != nil {
		return err
	}
	return l.stakeOf(caller, reply)
}

func (l *LedgerService) stakeOf(acct common.Address, reply *Amount) error {
	stake, err := l.s.Ledger.GetStake(acct)
	if err != nil {
		return err
	}
	*reply = display(stake, l.s.stakeDecimals)
	return nil
}

func (l *LedgerService) Claim(r *http.Request, _ *json.RawMessage, reply *Amount) error {
	caller, err := l.s.caller(r)
	if err != nil {
		return err
	}
	paid, err := l.s.Ledger.Claim(caller)
	if err != nil {
		return err
	}
	*reply = display(paid, l.s.payoutDecimals)
	return nil
}

func (l *LedgerService) GetStake(r *http.Request, args *AccountArgs, reply *Amount) error {
	acct, err := l.s.account(r, args.Account)
	if err != nil {
		return err
	}
	return l.stakeOf(acct, reply)
}

func (l *LedgerService) GetRecord(r *http.Request, args *AccountArgs, reply *accounting.MinerRecord) error {
	acct, err := l.s.account(r, args.Account)
	if err != nil {
		return err
	}
	rec, err := l.s.Ledger.GetRecord(acct)
	if err != nil {
		return err
	}
	*reply = *rec
	return nil
}

func (l *LedgerService) PendingReward(r *http.Request, args *AccountArgs, reply *Amount) error {
	acct, err := l.s.account(r, args.Account)
	if err != nil {
		return err
	}
	reward, err := l.s.Ledger.PendingReward(acct)
	if err != nil {
		return err
	}
	*reply = display(reward, l.s.payoutDecimals)
	return nil
}

func (l *LedgerService) CanClaim(r *http.Request, args *AccountArgs, reply *CheckReply) error {
	acct, err := l.s.account(r, args.Account)
	if err != nil {
		return err
	}
	ok, err := l.s.Ledger.CanClaim(acct)
	return check(ok, err, reply)
}

func (l *LedgerService) CanUnstake(r *http.Request, args *AccountArgs, reply *CheckReply) error {
	acct, err := l.s.account(r, args.Account)
	if err != nil {
		return err
	}
	ok, err := l.s.Ledger.CanUnstake(acct)
	return check(ok, err, reply)
}

type RateArgs struct {
	Day  int64  `json:"day"`
	Rate uint64 `json:"rate"`
}

func (l *LedgerService) SetRate(r *http.Request, args *RateArgs, reply *RateArgs) error {
	caller, err := l.s.caller(r)
	if err != nil {
		return err
	}
	if err := l.s.Ledger.SetRate(caller, dayclock.DayIndex(args.Day), args.Rate); err != nil {
		return err
	}
	*reply = *args
	return nil
}

func (l *LedgerService) ChangeRate(r *http.Request, args *RateArgs, reply *RateArgs) error {
	caller, err := l.s.caller(r)
	if err != nil {
		return err
	}
	if err := l.s.Ledger.ChangeRate(caller, dayclock.DayIndex(args.Day), args.Rate); err != nil {
		return err
	}
	*reply = *args
	return nil
}

func (l *LedgerService) GetRate(r *http.Request, args *RateArgs, reply *RateArgs) error {
	rate, err := l.s.Ledger.GetRate(dayclock.DayIndex(args.Day))
	if err != nil {
		return err
	}
	reply.Day, reply.Rate = args.Day, rate
	return nil
}

type RatesArgs struct {
	Limit int32 `json:"limit"`
}

func (l *LedgerService) Rates(r *http.Request, args *RatesArgs, reply *[]rates.Entry) error {
	limit := args.Limit
	if limit <= 0 || limit > MaxLimit {
		limit = MaxLimit
	}
	entries, err := l.s.Ledger.Rates(int(limit))
	if err != nil {
		return err
	}
	*reply = append([]rates.Entry{}, entries...)
	return nil
}

type AddressArgs struct {
	Address string `json:"address"`
}

func (l *LedgerService) SetReserve(r *http.Request, args *AddressArgs, reply *accounting.Settings) error {
	caller, err := l.s.caller(r)
	if err != nil {
		return err
	}
	addr, err := parseAddress(args.Address)
	if err != nil {
		return err
	}
	if err := l.s.Ledger.SetReserveAddress(caller, addr); err != nil {
		return err
	}
	return l.Settings(r, nil, reply)
}

type SymbolArgs struct {
	Symbol string `json:"symbol"`
}

func (l *LedgerService) SetPayoutToken(r *http.Request, args *SymbolArgs, reply *accounting.Settings) error {
	caller, err := l.s.caller(r)
	if err != nil {
		return err
	}
	if err := l.s.Ledger.SetPayoutToken(caller, args.Symbol); err != nil {
		return err
	}
	return l.Settings(r, nil, reply)
}

func (l *LedgerService) Settings(r *http.Request, _ *json.RawMessage, reply *accounting.Settings) error {
	st, err := l.s.Ledger.Settings()
	if err != nil {
		return err
	}
	*reply = *st
	return nil
}

type RoleArgs struct {
	Role    string `json:"role"`
	Account string `json:"account"`
}

type RoleReply struct {
	Has     bool `json:"has"`
	Changed bool `json:"changed"`
}

func (args *RoleArgs) parse() (roles.Role, common.Address, error) {
	role, err := roles.Parse(args.Role)
	if err != nil {
		return role, common.Address{}, err
	}
	acct, err := parseAddress(args.Account)
	return role, acct, err
}

func (l *LedgerService) GrantRole(r *http.Request, args *RoleArgs, reply *RoleReply) error {
	caller, err := l.s.caller(r)
	if err != nil {
		return err
	}
	role, acct, err := args.parse()
	if err != nil {
		return err
	}
	reply.Changed, err = l.s.Ledger.GrantRole(caller, role, acct)
	reply.Has = err == nil
	return err
}

func (l *LedgerService) RevokeRole(r *http.Request, args *RoleArgs, reply *RoleReply) error {
	caller, err := l.s.caller(r)
	if err != nil {
		return err
	}
	role, acct, err := args.parse()
	if err != nil {
		return err
	}
	reply.Changed, err = l.s.Ledger.RevokeRole(caller, role, acct)
	return err
}

func (l *LedgerService) HasRole(r *http.Request, args *RoleArgs, reply *RoleReply) error {
	role, acct, err := args.parse()
	if err != nil {
		return err
	}
	reply.Has, err = l.s.Ledger.HasRole(role, acct)
	return err
}

type TokenArgs struct {
	Symbol  string `json:"symbol"`
	Account string `json:"account"`
	Spender string `json:"spender"`
	Amount  string `json:"amount"`
}

func (l *LedgerService) Mint(r *http.Request, args *TokenArgs, reply *Amount) error {
	caller, err := l.s.caller(r)
	if err != nil {
		return err
	}
	to, err := parseAddress(args.Account)
	if err != nil {
		return err
	}
	amount, err := parseAmount(args.Amount)
	if err != nil {
		return err
	}
	if err := l.s.Ledger.Mint(caller, to, amount); err != nil {
		return err
	}
	*reply = display(amount, l.s.stakeDecimals)
	return nil
}

func (l *LedgerService) Balance(r *http.Request, args *TokenArgs, reply *Amount) error {
	acct, err := l.s.account(r, args.Account)
	if err != nil {
		return err
	}
	bal, err := l.s.Ledger.Balance(args.Symbol, acct)
	if err != nil {
		return err
	}
	*reply = display(bal, l.s.decimalsOf(args.Symbol))
	return nil
}

func (l *LedgerService) Allowance(r *http.Request, args *TokenArgs, reply *Amount) error {
	owner, err := l.s.account(r, args.Account)
	if err != nil {
		return err
	}
	spender, err := parseAddress(args.Spender)
	if err != nil {
		return err
	}
	allowance, err := l.s.Ledger.Allowance(args.Symbol, owner, spender)
	if err != nil {
		return err
	}
	*reply = display(allowance, l.s.decimalsOf(args.Symbol))
	return nil
}

// Transfer sends the caller's tokens to args.Account
func (l *LedgerService) Transfer(r *http.Request, args *TokenArgs, reply *Amount) error {
	caller, err := l.s.caller(r)
	if err != nil {
		return err
	}
	to, err := parseAddress(args.Account)
	if err != nil {
		return err
	}
	amount, err := parseAmount(args.Amount)
	if err != nil {
		return err
	}
	if err := l.s.Ledger.Transfer(args.Symbol, caller, to, amount); err != nil {
		return err
	}
	*reply = display(amount, l.s.decimalsOf(args.Symbol))
	return nil
}

func (l *LedgerService) Approve(r *http.Request, args *TokenArgs, reply *Amount) error {
	return l.approve(r, args, reply, false)
}

func (l *LedgerService) IncreaseApproval(r *http.Request, args *TokenArgs, reply *Amount) error {
	return l.approve(r, args, reply, true)
}

func (l *LedgerService) approve(r *http.Request, args *TokenArgs, reply *Amount, increase bool) error {
	caller, err := l.s.caller(r)
	if err != nil {
		return err
	}
	spender, err := parseAddress(args.Spender)
	if err != nil {
		return err
	}
	amount, err := parseAmount(args.Amount)
	if err != nil {
		return err
	}
	if increase {
		err = l.s.Ledger.IncreaseApproval(args.Symbol, caller, spender, amount)
	} else {
		err = l.s.Ledger.Approve(args.Symbol, caller, spender, amount)
	}
	if err != nil {
		return err
	}
	allowance, err := l.s.Ledger.Allowance(args.Symbol, caller, spender)
	if err != nil {
		return err
	}
	*reply = display(allowance, l.s.decimalsOf(args.Symbol))
	return nil
}

func (l *LedgerService) Events(r *http.Request, args *accounting.EventFilter, reply *accounting.EventPage) error {
	args.Default(50, "asc", "id").Max(MaxLimit)
	if common.IsHexAddress(args.Account) {
		args.Account = common.HexToAddress(args.Account).Hex()
	}
	page, err := l.s.Ledger.Events(*args)
	if err != nil {
		return err
	}
	*reply = *page
	return nil
}

func (l *LedgerService) DayStatus(r *http.Request, _ *json.RawMessage, reply *daykeeper.DayStatus) error {
	if l.s.DayKeeper == nil {
		return fmt.Errorf("day keeper is not running")
	}
	*reply = l.s.DayKeeper.Status()
	return nil
}
