package memory

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/code-payments/echo-client/pkg/solana"
	"github.com/code-payments/echo-client/pkg/solana/echo"
	"github.com/code-payments/echo-client/pkg/solana/system"
	"github.com/code-payments/echo-client/pkg/solana/token"
)

// Custom errors returned by the system program.
const (
	systemErrorAccountAlreadyInUse solana.CustomError = iota
	systemErrorResultWithNegativeLamports
)

const minPrefixedBufferSize = 4 + 8

var (
	errUnknownProgram = errors.New("unknown program")

	errInvalidArgument             = errors.New(string(solana.InstructionErrorInvalidArgument))
	errInvalidInstructionData      = errors.New(string(solana.InstructionErrorInvalidInstructionData))
	errInvalidAccountData          = errors.New(string(solana.InstructionErrorInvalidAccountData))
	errAccountDataTooSmall         = errors.New(string(solana.InstructionErrorAccountDataTooSmall))
	errIncorrectProgramID          = errors.New(string(solana.InstructionErrorIncorrectProgramID))
	errMissingRequiredSignature    = errors.New(string(solana.InstructionErrorMissingRequiredSignature))
	errUninitializedAccount        = errors.New(string(solana.InstructionErrorUninitializedAccount))
	errExternalAccountDataModified = errors.New(string(solana.InstructionErrorExternalAccountDataModified))
	errReadonlyDataModified        = errors.New(string(solana.InstructionErrorReadonlyDataModified))
	errNotEnoughAccountKeys        = errors.New(string(solana.InstructionErrorNotEnoughAccountKeys))
	errInvalidSeeds                = errors.New(string(solana.InstructionErrorInvalidSeeds))
)

// executor runs the instructions of a single message against a copy of the
// ledger state.
type executor struct {
	program  ed25519.PublicKey
	accounts state
	message  solana.Message
}

func newExecutor(program ed25519.PublicKey, accounts state, message solana.Message) *executor {
	return &executor{
		program:  program,
		accounts: accounts,
		message:  message,
	}
}

func (e *executor) execute() error {
	for index := range e.message.Instructions {
		err := e.executeInstruction(index)
		if err == errUnknownProgram {
			return solana.NewTransactionError(solana.TransactionErrorProgramAccountNotFound)
		} else if err != nil {
			return instructionError(index, err)
		}
	}
	return nil
}

func (e *executor) executeInstruction(index int) error {
	program := e.message.Accounts[e.message.Instructions[index].ProgramIndex]

	switch {
	case bytes.Equal(program, system.ProgramKey[:]):
		return e.executeSystem(index)
	case bytes.Equal(program, token.ProgramKey):
		return e.executeToken(index)
	case bytes.Equal(program, token.AssociatedTokenAccountProgramKey):
		return e.executeCreateAssociatedAccount(index)
	case bytes.Equal(program, e.program):
		return e.executeEcho(index)
	default:
		return errUnknownProgram
	}
}

//
// System program
//

func (e *executor) executeSystem(index int) error {
	create, err := system.DecompileCreateAccount(e.message, index)
	if err == nil {
		if !e.isSigner(create.Funder) || !e.isSigner(create.Address) {
			return errMissingRequiredSignature
		}
		return e.createAccount(create.Funder, create.Address, create.Lamports, create.Size, create.Owner)
	} else if err != solana.ErrIncorrectInstruction {
		return errInvalidInstructionData
	}

	transfer, err := system.DecompileTransfer(e.message, index)
	if err != nil {
		return errInvalidInstructionData
	}
	if !e.isSigner(transfer.From) {
		return errMissingRequiredSignature
	}
	return e.transfer(transfer.From, transfer.To, transfer.Lamports)
}

func (e *executor) createAccount(funder, address ed25519.PublicKey, lamports, size uint64, owner ed25519.PublicKey) error {
	if existing, ok := e.accounts[string(address)]; ok && (existing.lamports > 0 || len(existing.data) > 0) {
		return systemErrorAccountAlreadyInUse
	}

	source, ok := e.accounts[string(funder)]
	if !ok || source.lamports < lamports {
		return systemErrorResultWithNegativeLamports
	}

	source.lamports -= lamports
	e.accounts[string(address)] = &account{
		lamports: lamports,
		owner:    append(ed25519.PublicKey(nil), owner...),
		data:     make([]byte, size),
	}
	return nil
}

func (e *executor) transfer(from, to ed25519.PublicKey, lamports uint64) error {
	source, ok := e.accounts[string(from)]
	if !ok || source.lamports < lamports {
		return systemErrorResultWithNegativeLamports
	}

	dest, ok := e.accounts[string(to)]
	if !ok {
		dest = &account{owner: system.ProgramKey[:]}
		e.accounts[string(to)] = dest
	}

	source.lamports -= lamports
	dest.lamports += lamports
	return nil
}

//
// Token programs
//

func (e *executor) executeToken(index int) error {
	cmd, err := token.GetCommand(e.message, index)
	if err != nil {
		return errInvalidInstructionData
	}

	switch cmd {
	case token.CommandInitializeMint:
		ix, err := token.DecompileInitializeMint(e.message, index)
		if err != nil {
			return errInvalidInstructionData
		}
		return e.initializeMint(ix)
	case token.CommandMintTo:
		ix, err := token.DecompileMintTo(e.message, index)
		if err != nil {
			return errInvalidInstructionData
		}
		return e.mintTo(ix)
	case token.CommandBurn:
		ix, err := token.DecompileBurn(e.message, index)
		if err != nil {
			return errInvalidInstructionData
		}
		if !e.isSigner(ix.Authority) {
			return errMissingRequiredSignature
		}
		return e.burn(ix.Token, ix.Counterparty, ix.Authority, ix.Amount)
	default:
		return errInvalidInstructionData
	}
}

func (e *executor) initializeMint(ix *token.DecompiledInitializeMint) error {
	a, ok := e.accounts[string(ix.Mint)]
	if !ok || !bytes.Equal(a.owner, token.ProgramKey) {
		return errIncorrectProgramID
	}

	var mint token.Mint
	if !mint.Unmarshal(a.data) {
		return errInvalidAccountData
	}
	if mint.IsInitialized {
		return token.ErrorAlreadyInUse
	}
	if a.lamports < rentExemptBalance(uint64(len(a.data))) {
		return token.ErrorNotRentExempt
	}

	mint = token.Mint{
		MintAuthority:   ix.MintAuthority,
		Decimals:        ix.Decimals,
		IsInitialized:   true,
		FreezeAuthority: ix.FreezeAuthority,
	}
	a.data = mint.Marshal()
	return nil
}

func (e *executor) mintTo(ix *token.DecompiledAmountInstruction) error {
	mint, mintAccount, err := e.loadMint(ix.Token)
	if err != nil {
		return err
	}
	dest, destAccount, err := e.loadTokenAccount(ix.Counterparty)
	if err != nil {
		return err
	}

	if !bytes.Equal(dest.Mint, ix.Token) {
		return token.ErrorMintMismatch
	}
	if len(mint.MintAuthority) == 0 {
		return token.ErrorFixedSupply
	}
	if !bytes.Equal(mint.MintAuthority, ix.Authority) {
		return token.ErrorOwnerMismatch
	}
	if !e.isSigner(ix.Authority) {
		return errMissingRequiredSignature
	}
	if dest.Amount+ix.Amount < dest.Amount || mint.Supply+ix.Amount < mint.Supply {
		return token.ErrorOverflow
	}

	dest.Amount += ix.Amount
	mint.Supply += ix.Amount

	destAccount.data = dest.Marshal()
	mintAccount.data = mint.Marshal()
	return nil
}

// burn removes amount from a token account and its mint's supply. The caller
// verifies the owner signed.
func (e *executor) burn(tokenAccount, mintKey, owner ed25519.PublicKey, amount uint64) error {
	source, sourceAccount, err := e.loadTokenAccount(tokenAccount)
	if err != nil {
		return err
	}
	mint, mintAccount, err := e.loadMint(mintKey)
	if err != nil {
		return err
	}

	if !bytes.Equal(source.Mint, mintKey) {
		return token.ErrorMintMismatch
	}
	if !bytes.Equal(source.Owner, owner) {
		return token.ErrorOwnerMismatch
	}
	if source.Amount < amount {
		return token.ErrorInsufficientFunds
	}

	source.Amount -= amount
	mint.Supply -= amount

	sourceAccount.data = source.Marshal()
	mintAccount.data = mint.Marshal()
	return nil
}

func (e *executor) executeCreateAssociatedAccount(index int) error {
	ix, err := token.DecompileCreateAssociatedAccount(e.message, index)
	if err != nil {
		return errInvalidInstructionData
	}
	if !e.isSigner(ix.Subsidizer) {
		return errMissingRequiredSignature
	}

	expected, err := token.GetAssociatedAccount(ix.Owner, ix.Mint)
	if err != nil || !bytes.Equal(expected, ix.Address) {
		return errInvalidSeeds
	}

	if _, _, err := e.loadMint(ix.Mint); err != nil {
		return err
	}

	err = e.createAccount(ix.Subsidizer, ix.Address, rentExemptBalance(token.AccountSize), token.AccountSize, token.ProgramKey)
	if err != nil {
		return err
	}

	initialized := token.Account{
		Mint:  ix.Mint,
		Owner: ix.Owner,
		State: token.AccountStateInitialized,
	}
	e.accounts[string(ix.Address)].data = initialized.Marshal()
	return nil
}

func (e *executor) loadMint(key ed25519.PublicKey) (*token.Mint, *account, error) {
	a, ok := e.accounts[string(key)]
	if !ok || !bytes.Equal(a.owner, token.ProgramKey) {
		return nil, nil, errIncorrectProgramID
	}

	var mint token.Mint
	if !mint.Unmarshal(a.data) {
		return nil, nil, errInvalidAccountData
	}
	if !mint.IsInitialized {
		return nil, nil, errUninitializedAccount
	}
	return &mint, a, nil
}

func (e *executor) loadTokenAccount(key ed25519.PublicKey) (*token.Account, *account, error) {
	a, ok := e.accounts[string(key)]
	if !ok || !bytes.Equal(a.owner, token.ProgramKey) {
		return nil, nil, errIncorrectProgramID
	}

	var tokenAccount token.Account
	if !tokenAccount.Unmarshal(a.data) {
		return nil, nil, errInvalidAccountData
	}
	if tokenAccount.State == token.AccountStateUninitialized {
		return nil, nil, errUninitializedAccount
	}
	return &tokenAccount, a, nil
}

//
// Echo program
//

func (e *executor) executeEcho(index int) error {
	i := e.message.Instructions[index]

	// Undecodable instruction data is reported as invalid account data.
	args, err := echo.DecodeInstructionData(i.Data)
	if err != nil {
		return errInvalidAccountData
	}

	layout, err := echo.GetAccountLayout(args.InstructionType())
	if err != nil {
		return errInvalidAccountData
	}
	if len(i.Accounts) < len(layout) {
		return errNotEnoughAccountKeys
	}

	ix, err := echo.DecompileInstruction(e.message, index, e.program)
	if err != nil {
		return errInvalidArgument
	}
	accounts := ix.Accounts

	switch args := ix.Args.(type) {
	case *echo.EchoInstructionArgs:
		return e.echo(accounts.Buffer, args.Data)

	case *echo.InitializeAuthorizedEchoInstructionArgs:
		if !e.isSigner(accounts.Payer) {
			return errMissingRequiredSignature
		}

		address, bump, err := echo.GetAuthorizedBufferAddress(&echo.GetAuthorizedBufferAddressArgs{
			Program:    e.program,
			Authority:  accounts.Payer,
			BufferSeed: args.BufferSeed,
		})
		if err != nil || !bytes.Equal(address, accounts.Buffer) {
			return errInvalidArgument
		}
		return e.initializePrefixedBuffer(accounts.Payer, accounts.Buffer, bump, args.BufferSeed, args.BufferSize)

	case *echo.AuthorizedEchoInstructionArgs:
		if !e.isSigner(accounts.Payer) {
			return errMissingRequiredSignature
		}

		a, buffer, err := e.loadPrefixedBuffer(accounts.Buffer, echo.AuthorityPrefix, accounts.Payer)
		if err != nil {
			return err
		}
		return e.writePrefixedBuffer(accounts.Buffer, a, buffer, args.Data)

	case *echo.InitializeVendingEchoInstructionArgs:
		if !e.isSigner(accounts.Payer) {
			return errMissingRequiredSignature
		}

		address, bump, err := echo.GetVendingMachineAddress(&echo.GetVendingMachineAddressArgs{
			Program: e.program,
			Mint:    accounts.Mint,
			Price:   args.Price,
		})
		if err != nil || !bytes.Equal(address, accounts.Buffer) {
			return errInvalidArgument
		}
		return e.initializePrefixedBuffer(accounts.Payer, accounts.Buffer, bump, args.Price, args.BufferSize)

	case *echo.VendingEchoInstructionArgs:
		if !e.isSigner(accounts.Payer) {
			return errMissingRequiredSignature
		}

		a, buffer, err := e.loadPrefixedBuffer(accounts.Buffer, echo.VendingMachinePrefix, accounts.Mint)
		if err != nil {
			return err
		}
		if err := e.burn(accounts.PayerTokenAccount, accounts.Mint, accounts.Payer, buffer.Value); err != nil {
			return err
		}
		return e.writePrefixedBuffer(accounts.Buffer, a, buffer, args.Data)

	default:
		return errInvalidAccountData
	}
}

func (e *executor) echo(key ed25519.PublicKey, message []byte) error {
	a, err := e.loadWritableProgramAccount(key)
	if err != nil {
		return err
	}

	for _, b := range a.data {
		if b != 0 {
			return echo.ErrorBufferNonZero
		}
	}

	buffer := echo.EchoBuffer{Message: message}
	data, err := buffer.Marshal(uint64(len(a.data)))
	if err != nil {
		return errAccountDataTooSmall
	}

	a.data = data
	return nil
}

func (e *executor) initializePrefixedBuffer(payer, key ed25519.PublicKey, bump uint8, value, size uint64) error {
	if size < minPrefixedBufferSize {
		return errAccountDataTooSmall
	}

	if err := e.createAccount(payer, key, rentExemptBalance(size), size, e.program); err != nil {
		return err
	}

	data, err := echo.InitialPrefixedBuffer(bump, value, size)
	if err != nil {
		return errAccountDataTooSmall
	}

	e.accounts[string(key)].data = data
	return nil
}

// loadPrefixedBuffer reads an authorized or vending machine buffer and
// verifies it is the address derived from its stored header.
func (e *executor) loadPrefixedBuffer(key ed25519.PublicKey, prefix []byte, seedKey ed25519.PublicKey) (*account, *echo.PrefixedBuffer, error) {
	a, ok := e.accounts[string(key)]
	if !ok {
		return nil, nil, errInvalidAccountData
	}

	var buffer echo.PrefixedBuffer
	if err := buffer.Unmarshal(a.data); err != nil {
		return nil, nil, errInvalidAccountData
	}

	address, err := solana.CreateProgramAddress(
		e.program,
		prefix,
		seedKey,
		binary.LittleEndian.AppendUint64(nil, buffer.Value),
		[]byte{buffer.Bump},
	)
	if err != nil || !bytes.Equal(address, key) {
		return nil, nil, errInvalidArgument
	}

	return a, &buffer, nil
}

func (e *executor) writePrefixedBuffer(key ed25519.PublicKey, a *account, buffer *echo.PrefixedBuffer, message []byte) error {
	if _, err := e.loadWritableProgramAccount(key); err != nil {
		return err
	}

	buffer.Message = message
	data, err := buffer.Marshal(uint64(len(a.data)))
	if err != nil {
		return errAccountDataTooSmall
	}

	a.data = data
	return nil
}

func (e *executor) loadWritableProgramAccount(key ed25519.PublicKey) (*account, error) {
	a, ok := e.accounts[string(key)]
	if !ok || !bytes.Equal(a.owner, e.program) {
		return nil, errExternalAccountDataModified
	}
	if !e.isWritable(key) {
		return nil, errReadonlyDataModified
	}
	return a, nil
}

func (e *executor) isSigner(key ed25519.PublicKey) bool {
	index := e.indexOf(key)
	return index >= 0 && e.message.IsSigner(index)
}

func (e *executor) isWritable(key ed25519.PublicKey) bool {
	index := e.indexOf(key)
	return index >= 0 && e.message.IsWritable(index)
}

func (e *executor) indexOf(key ed25519.PublicKey) int {
	for i, candidate := range e.message.Accounts {
		if bytes.Equal(candidate, key) {
			return i
		}
	}
	return -1
}

func instructionError(index int, err error) error {
	txErr, convErr := solana.TransactionErrorFromInstructionError(&solana.InstructionError{
		Index: index,
		Err:   err,
	})
	if convErr != nil {
		return errors.Wrap(err, "instruction failed")
	}
	return txErr
}
