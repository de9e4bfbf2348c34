// Package ofx converts OFX/QFX bank exports into transaction records.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Veraticus/spice-tally/internal/common"
	"github.com/Veraticus/spice-tally/internal/model"
	"github.com/aclindsa/ofxgo"
)

var (
	// Some banks emit <SEVERITY>Info</SEVERITY>; ofxgo only accepts upper case.
	severityPattern = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// SGML exports occasionally drop the closing bracket of a bare opening tag.
	unclosedTagPattern = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityPattern.ReplaceAllStringFunc(content, strings.ToUpper)
	return unclosedTagPattern.ReplaceAllString(content, "$1>")
}

// ParseFile parses an OFX/QFX file and returns its transactions as records.
// Positive amounts become credits and negative amounts debits.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]*model.TransactionRecord, error) {
	resp, err := p.parseResponse(reader)
	if err != nil {
		return nil, err
	}

	var records []*model.TransactionRecord
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			if stmt.BankTranList == nil {
				continue
			}
			for _, ofxTx := range stmt.BankTranList.Transactions {
				records = append(records, p.convertTransaction(ofxTx))
			}
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			if stmt.BankTranList == nil {
				continue
			}
			for _, ofxTx := range stmt.BankTranList.Transactions {
				records = append(records, p.convertTransaction(ofxTx))
			}
		}
	}

	slog.DebugContext(ctx, "Parsed OFX file",
		"total_transactions", len(records),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return records, nil
}

func (p *Parser) parseResponse(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	processedContent := p.preprocessOFX(string(content))

	resp, err := ofxgo.ParseResponse(strings.NewReader(processedContent))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse OFX file: %v", common.ErrInvalidInput, err)
	}
	return resp, nil
}

// convertTransaction converts an OFX transaction to a record.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction) *model.TransactionRecord {
	amount, _ := ofxTx.TrnAmt.Float64()

	txType := model.TypeCredit
	if amount < 0 {
		txType = model.TypeDebit
		amount = -amount
	}

	record := &model.TransactionRecord{
		ID:       string(ofxTx.FiTID),
		Type:     txType,
		Amount:   model.Float(amount),
		To:       p.extractMerchantName(ofxTx),
		Category: strings.ToLower(ofxTx.TrnType.String()),
	}
	if !ofxTx.DtPosted.IsZero() {
		record.Date = ofxTx.DtPosted.Format("2006-01-02")
	}

	return record
}

// cardPrefixes are processor boilerplate some banks put in front of the merchant.
var cardPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

// genericNames carry no counterparty information on their own.
var genericNames = map[string]bool{
	"DEBIT":           true,
	"CREDIT":          true,
	"PURCHASE":        true,
	"PAYMENT":         true,
	"POS TRANSACTION": true,
	"CARD PURCHASE":   true,
}

// extractMerchantName picks the best counterparty label available on the transaction.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && genericNames[strings.ToUpper(name)] {
		name = strings.TrimSpace(string(tx.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range cardPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Strip a leading "MM/DD " posting date.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// GetAccounts extracts unique account IDs from the OFX file, in file order.
func (p *Parser) GetAccounts(reader io.Reader) ([]string, error) {
	resp, err := p.parseResponse(reader)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var accounts []string
	add := func(id ofxgo.String) {
		if id != "" && !seen[string(id)] {
			seen[string(id)] = true
			accounts = append(accounts, string(id))
		}
	}

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			add(stmt.BankAcctFrom.AcctID)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			add(stmt.CCAcctFrom.AcctID)
		}
	}

	return accounts, nil
}
