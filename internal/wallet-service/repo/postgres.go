package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// Postgres implementa operações de carteira em banco
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("not found")
)

// Balance é o saldo da carteira separado por categoria.
// totalWinnings acumula tudo que o usuário já ganhou (nunca decrementa).
type Balance struct {
	WalletID           string
	DepositPaise       int64
	WinningPaise       int64
	BonusPaise         int64
	TotalWinningsPaise int64
}

func (b Balance) TotalPaise() int64 { return b.DepositPaise + b.WinningPaise + b.BonusPaise }

// GetOrCreateWallet retorna a carteira de um usuário, criando-a se não existir
// Usa transação para garantir atomicidade
func (p *Postgres) GetOrCreateWallet(ctx context.Context, userID string) (Balance, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return Balance{}, err
	}
	defer tx.Rollback()

	var b Balance
	err = tx.QueryRowContext(ctx, `
		SELECT id, deposit_paise, winning_paise, bonus_paise, total_winnings_paise
		FROM wallets WHERE user_id=$1`, userID).
		Scan(&b.WalletID, &b.DepositPaise, &b.WinningPaise, &b.BonusPaise, &b.TotalWinningsPaise)
	if err == sql.ErrNoRows {
		b = Balance{WalletID: uuid.NewString()}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO wallets(id, user_id, deposit_paise, winning_paise, bonus_paise, total_winnings_paise, version)
			VALUES($1,$2,0,0,0,0,1)`, b.WalletID, userID); err != nil {
			return Balance{}, err
		}
	} else if err != nil {
		return Balance{}, err
	}

	if err = tx.Commit(); err != nil {
		return Balance{}, err
	}
	return b, nil
}

// Deposit incrementa o saldo de depósito e registra a operação no ledger
// Garante lock pessimista na linha da carteira
func (p *Postgres) Deposit(ctx context.Context, userID string, amount int64, externalRef string) (Balance, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return Balance{}, err
	}
	defer tx.Rollback()

	var walletID string
	if err = tx.QueryRowContext(ctx, `SELECT id FROM wallets WHERE user_id=$1 FOR UPDATE`, userID).Scan(&walletID); err != nil {
		if err == sql.ErrNoRows {
			return Balance{}, ErrNotFound
		}
		return Balance{}, err
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE wallets SET deposit_paise = deposit_paise + $1, version = version + 1 WHERE id=$2`,
		amount, walletID); err != nil {
		return Balance{}, err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO wallet_ledger(wallet_id, operation_type, category, amount_paise, external_ref, description)
		VALUES($1,'CREDIT','deposit',$2,$3,$4)`,
		walletID, amount, externalRef, "deposit:"+externalRef); err != nil {
		return Balance{}, err
	}

	b, err := readBalance(ctx, tx, walletID)
	if err != nil {
		return Balance{}, err
	}
	if err = tx.Commit(); err != nil {
		return Balance{}, err
	}
	return b, nil
}

// DebitForBet debita o stake de uma aposta, consumindo depósito, depois
// winning, depois bônus. Idempotente por (wallet_id, external_ref): repetir a
// chamada para o mesmo betID não debita de novo.
func (p *Postgres) DebitForBet(ctx context.Context, userID string, amount int64, externalRef string) (Balance, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return Balance{}, err
	}
	defer tx.Rollback()

	var b Balance
	err = tx.QueryRowContext(ctx, `
		SELECT id, deposit_paise, winning_paise, bonus_paise, total_winnings_paise
		FROM wallets WHERE user_id=$1 FOR UPDATE`, userID).
		Scan(&b.WalletID, &b.DepositPaise, &b.WinningPaise, &b.BonusPaise, &b.TotalWinningsPaise)
	if err == sql.ErrNoRows {
		return Balance{}, ErrNotFound
	}
	if err != nil {
		return Balance{}, err
	}

	// Idempotência: débito já aplicado para este external_ref
	var exists string
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM wallet_ledger WHERE wallet_id=$1 AND external_ref=$2 AND operation_type='DEBIT'`,
		b.WalletID, externalRef).Scan(&exists)
	if err == nil {
		return b, nil
	} else if err != sql.ErrNoRows {
		return Balance{}, err
	}

	if b.TotalPaise() < amount {
		return Balance{}, ErrInsufficientFunds
	}

	fromDeposit := min64(amount, b.DepositPaise)
	fromWinning := min64(amount-fromDeposit, b.WinningPaise)
	fromBonus := amount - fromDeposit - fromWinning

	if _, err = tx.ExecContext(ctx, `
		UPDATE wallets SET
		  deposit_paise = deposit_paise - $1,
		  winning_paise = winning_paise - $2,
		  bonus_paise   = bonus_paise - $3,
		  version = version + 1
		WHERE id=$4`,
		fromDeposit, fromWinning, fromBonus, b.WalletID); err != nil {
		return Balance{}, err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO wallet_ledger(wallet_id, operation_type, category, amount_paise, external_ref, description)
		VALUES($1,'DEBIT','bet',$2,$3,$4)`,
		b.WalletID, amount, externalRef, "bet:"+externalRef); err != nil {
		return Balance{}, err
	}

	b, err = readBalance(ctx, tx, b.WalletID)
	if err != nil {
		return Balance{}, err
	}
	if err = tx.Commit(); err != nil {
		return Balance{}, err
	}
	return b, nil
}

// CreditWinning credita um pagamento de aposta vencedora na categoria winning
// e no acumulado total_winnings. Idempotente por (wallet_id, external_ref):
// a liquidação pode repetir a instrução após um crash sem pagar duas vezes.
func (p *Postgres) CreditWinning(ctx context.Context, userID string, amount int64, externalRef string) (Balance, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return Balance{}, err
	}
	defer tx.Rollback()

	var walletID string
	if err = tx.QueryRowContext(ctx, `SELECT id FROM wallets WHERE user_id=$1 FOR UPDATE`, userID).Scan(&walletID); err != nil {
		if err == sql.ErrNoRows {
			return Balance{}, ErrNotFound
		}
		return Balance{}, err
	}

	// Idempotência: crédito já aplicado para este betID
	var exists string
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM wallet_ledger WHERE wallet_id=$1 AND external_ref=$2 AND category='winning'`,
		walletID, externalRef).Scan(&exists)
	if err == nil {
		b, rerr := readBalance(ctx, tx, walletID)
		if rerr != nil {
			return Balance{}, rerr
		}
		return b, tx.Commit()
	} else if err != sql.ErrNoRows {
		return Balance{}, err
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE wallets SET
		  winning_paise = winning_paise + $1,
		  total_winnings_paise = total_winnings_paise + $1,
		  version = version + 1
		WHERE id=$2`, amount, walletID); err != nil {
		return Balance{}, err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO wallet_ledger(wallet_id, operation_type, category, amount_paise, external_ref, description)
		VALUES($1,'CREDIT','winning',$2,$3,$4)`,
		walletID, amount, externalRef, "settlement:"+externalRef); err != nil {
		return Balance{}, err
	}

	b, err := readBalance(ctx, tx, walletID)
	if err != nil {
		return Balance{}, err
	}
	if err = tx.Commit(); err != nil {
		return Balance{}, err
	}
	return b, nil
}

func readBalance(ctx context.Context, tx *sql.Tx, walletID string) (Balance, error) {
	var b Balance
	err := tx.QueryRowContext(ctx, `
		SELECT id, deposit_paise, winning_paise, bonus_paise, total_winnings_paise
		FROM wallets WHERE id=$1`, walletID).
		Scan(&b.WalletID, &b.DepositPaise, &b.WinningPaise, &b.BonusPaise, &b.TotalWinningsPaise)
	return b, err
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
