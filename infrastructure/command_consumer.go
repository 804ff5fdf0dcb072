package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"raffler/config"
	"raffler/models"
	"raffler/service"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Command subjects accepted by the consumer.
const (
	SubjectCreateLottery   = "lottery.cmd.create"
	SubjectEnter           = "lottery.cmd.enter"
	SubjectDrawWinner      = "lottery.cmd.draw"
	SubjectWithdraw        = "lottery.cmd.withdraw"
	SubjectWithdrawBalance = "lottery.cmd.withdraw_balance"
	SubjectPause           = "lottery.cmd.pause"
	SubjectUnpause         = "lottery.cmd.unpause"
	SubjectDeposit         = "lottery.cmd.deposit"
)

// CreateLotteryCommand opens a new round
type CreateLotteryCommand struct {
	OwnerAddress       string `json:"owner_address"`
	AdminAddress       string `json:"admin_address"`
	EntryFee           int64  `json:"entry_fee"`
	MaxEntries         int    `json:"max_entries"`
	LotteryFeeDivisor  int64  `json:"lottery_fee_divisor"`
	PlatformFeeDivisor int64  `json:"platform_fee_divisor"`
}

// EnterCommand admits an address into a round
type EnterCommand struct {
	LotteryID uuid.UUID `json:"lottery_id"`
	Address   string    `json:"address"`
	Amount    int64     `json:"amount"`
}

// RoundCommand carries the operations that only need a round and a caller
type RoundCommand struct {
	LotteryID uuid.UUID `json:"lottery_id"`
	Caller    string    `json:"caller"`
}

// DepositCommand records an unsolicited value receipt
type DepositCommand struct {
	LotteryID uuid.UUID `json:"lottery_id"`
	Sender    string    `json:"sender"`
	Amount    int64     `json:"amount"`
}

// CommandConsumer maps JSON commands on lottery.cmd.* subjects to
// service calls. Fields omitted from a create command fall back to the
// configured round defaults.
type CommandConsumer struct {
	natsClient *NATSClient
	service    service.LotteryService
	cfg        *config.Config
}

// NewCommandConsumer creates a new command consumer
func NewCommandConsumer(natsClient *NATSClient, svc service.LotteryService, cfg *config.Config) *CommandConsumer {
	return &CommandConsumer{
		natsClient: natsClient,
		service:    svc,
		cfg:        cfg,
	}
}

// Start ensures the command stream exists and subscribes to every
// command subject
func (c *CommandConsumer) Start() error {
	if err := c.natsClient.EnsureLotteryCommandStream(); err != nil {
		return fmt.Errorf("failed to ensure command stream: %w", err)
	}

	subscriptions := map[string]func([]byte) error{
		SubjectCreateLottery:   c.handleCreate,
		SubjectEnter:           c.handleEnter,
		SubjectDrawWinner:      c.handleDraw,
		SubjectWithdraw:        c.handleWithdraw,
		SubjectWithdrawBalance: c.handleWithdrawBalance,
		SubjectPause:           c.handlePause,
		SubjectUnpause:         c.handleUnpause,
		SubjectDeposit:         c.handleDeposit,
	}

	for subject, handler := range subscriptions {
		if err := c.natsClient.Subscribe(subject, handler); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
		}
	}

	log.Info("Command consumer started")
	return nil
}

func (c *CommandConsumer) handleCreate(data []byte) error {
	var cmd CreateLotteryCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return fmt.Errorf("failed to unmarshal create command: %w", err)
	}

	if cmd.AdminAddress == "" {
		cmd.AdminAddress = c.cfg.PlatformAdminAddress
	}
	if cmd.EntryFee == 0 {
		cmd.EntryFee = c.cfg.DefaultEntryFee
	}
	if cmd.MaxEntries == 0 {
		cmd.MaxEntries = c.cfg.DefaultMaxEntries
	}
	if cmd.LotteryFeeDivisor == 0 {
		cmd.LotteryFeeDivisor = c.cfg.DefaultLotteryFeeDivisor
	}
	if cmd.PlatformFeeDivisor == 0 {
		cmd.PlatformFeeDivisor = c.cfg.DefaultPlatformFeeDivisor
	}

	lottery, err := c.service.CreateLottery(context.Background(), models.LotteryParams{
		OwnerAddress:       cmd.OwnerAddress,
		AdminAddress:       cmd.AdminAddress,
		EntryFee:           cmd.EntryFee,
		MaxEntries:         cmd.MaxEntries,
		LotteryFeeDivisor:  cmd.LotteryFeeDivisor,
		PlatformFeeDivisor: cmd.PlatformFeeDivisor,
	})
	if err != nil {
		return c.handleCommandError(SubjectCreateLottery, err)
	}

	log.WithFields(log.Fields{
		"lotteryID": lottery.ID,
		"owner":     lottery.OwnerAddress,
	}).Info("Processed create command")
	return nil
}

func (c *CommandConsumer) handleEnter(data []byte) error {
	var cmd EnterCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return fmt.Errorf("failed to unmarshal enter command: %w", err)
	}

	_, err := c.service.Enter(context.Background(), cmd.LotteryID, cmd.Address, cmd.Amount)
	return c.handleCommandError(SubjectEnter, err)
}

func (c *CommandConsumer) handleDraw(data []byte) error {
	var cmd RoundCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return fmt.Errorf("failed to unmarshal draw command: %w", err)
	}

	_, err := c.service.DrawWinner(context.Background(), cmd.LotteryID, cmd.Caller)
	return c.handleCommandError(SubjectDrawWinner, err)
}

func (c *CommandConsumer) handleWithdraw(data []byte) error {
	var cmd RoundCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return fmt.Errorf("failed to unmarshal withdraw command: %w", err)
	}

	_, err := c.service.Withdraw(context.Background(), cmd.LotteryID, cmd.Caller)
	return c.handleCommandError(SubjectWithdraw, err)
}

func (c *CommandConsumer) handleWithdrawBalance(data []byte) error {
	var cmd RoundCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return fmt.Errorf("failed to unmarshal withdraw balance command: %w", err)
	}

	_, err := c.service.WithdrawBalance(context.Background(), cmd.LotteryID, cmd.Caller)
	return c.handleCommandError(SubjectWithdrawBalance, err)
}

func (c *CommandConsumer) handlePause(data []byte) error {
	var cmd RoundCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return fmt.Errorf("failed to unmarshal pause command: %w", err)
	}

	return c.handleCommandError(SubjectPause, c.service.Pause(context.Background(), cmd.LotteryID, cmd.Caller))
}

func (c *CommandConsumer) handleUnpause(data []byte) error {
	var cmd RoundCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return fmt.Errorf("failed to unmarshal unpause command: %w", err)
	}

	return c.handleCommandError(SubjectUnpause, c.service.Unpause(context.Background(), cmd.LotteryID, cmd.Caller))
}

func (c *CommandConsumer) handleDeposit(data []byte) error {
	var cmd DepositCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return fmt.Errorf("failed to unmarshal deposit command: %w", err)
	}

	return c.handleCommandError(SubjectDeposit, c.service.Deposit(context.Background(), cmd.LotteryID, cmd.Sender, cmd.Amount))
}

// handleCommandError distinguishes domain rejections from
// infrastructure failures. Rejections are terminal for the message:
// redelivering a command that the escrow state machine refused will
// never succeed, so they are logged and acked. Everything else is
// returned for NAK and redelivery.
func (c *CommandConsumer) handleCommandError(subject string, err error) error {
	if err == nil {
		return nil
	}

	for _, sentinel := range []error{
		models.ErrAlreadyEntered,
		models.ErrIncorrectFee,
		models.ErrEntriesFull,
		models.ErrInsufficientEntries,
		models.ErrNotAuthorized,
		models.ErrAlreadyDrawn,
		models.ErrNotYetDrawn,
		models.ErrNothingToWithdraw,
		models.ErrPaused,
		models.ErrTransferFailed,
		models.ErrInvalidParameter,
		models.ErrLotteryNotFound,
	} {
		if errors.Is(err, sentinel) {
			log.WithFields(log.Fields{
				"subject": subject,
				"error":   err,
			}).Warn("Command rejected")
			return nil
		}
	}

	return err
}
