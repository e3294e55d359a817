package ledgersdk

// Query is the mutable-until-executed base embedded by every concrete
// query kind (AccountBalanceQuery, TransactionReceiptQuery,
// TransactionRecordQuery). Unlike Transaction, a Query never requires a
// transaction ID of its own — RequiresTransactionID is false — but a
// paid query may carry an embedded, signed payment Transaction, built
// through the same Request pipeline as any other transaction (§12
// "Payment transaction embedding").
type Query struct {
	nodeAccountIDs []AccountID

	payment       *TransferTransaction
	paymentAmount uint64
}

// SetNodeAccountIDs pins the candidate node list for this query.
func (q *Query) SetNodeAccountIDs(ids []AccountID) {
	q.nodeAccountIDs = append([]AccountID(nil), ids...)
}

// SetQueryPayment sets the tinybar-equivalent amount this query is
// willing to pay the answering node, triggering construction of an
// embedded payment Transaction the next time the query executes.
func (q *Query) SetQueryPayment(amount uint64) {
	q.paymentAmount = amount
}

// ExplicitNodeIDs implements part of Request.
func (q *Query) ExplicitNodeIDs() []AccountID { return q.nodeAccountIDs }

// ExplicitTransactionID implements part of Request: a query has no
// transaction ID of its own.
func (q *Query) ExplicitTransactionID() (TransactionID, bool) { return TransactionID{}, false }

// RequiresTransactionID implements part of Request: queries don't mint
// one (though their embedded payment, if any, does internally).
func (q *Query) RequiresTransactionID() bool { return false }

// buildPayment constructs (if a payment amount was set) a fully signed
// payment transaction from the operator to the given node, embedding it
// in the query's wire payload. client is required to resolve the
// operator and a recipient account; a free (unpaid) query never calls
// this.
func (q *Query) buildPayment(client *Client, nodeID AccountID) ([]byte, error) {
	if q.paymentAmount == 0 {
		return nil, nil
	}
	if client == nil {
		return nil, NewNoPayerAccountOrTransactionIDError()
	}
	payer, ok := client.operator.PayerAccountID()
	if !ok {
		return nil, NewNoPayerAccountOrTransactionIDError()
	}

	payment := NewTransferTransaction().
		AddHbarTransfer(payer, -int64(q.paymentAmount)).
		AddHbarTransfer(nodeID, int64(q.paymentAmount))
	payment.SetNodeAccountIDs([]AccountID{nodeID})
	if err := payment.FreezeWith(client); err != nil {
		return nil, err
	}
	build, err := payment.BuildRequest(payment.transactionID, true, nodeID)
	if err != nil {
		return nil, err
	}
	q.payment = payment
	return build.Wire, nil
}
