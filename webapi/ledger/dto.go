package ledger

type MonthlyAmountInput struct {
	MonthlyAmount float64 `json:"monthlyAmount" validate:"gte=0"`
}

type NotepadInput struct {
	Content string `json:"content" validate:"max=100000"`
}

type CDIRateInput struct {
	Rate float64 `json:"rate" validate:"gte=0,lte=100"`
}
