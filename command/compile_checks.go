package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[ProcessPaymentMessage]   = (*ProcessPaymentCommand)(nil)
	_ gocmd.Commander[StartAutoAdvanceMessage] = (*StartAutoAdvanceCommand)(nil)
	_ gocmd.Commander[StopAutoAdvanceMessage]  = (*StopAutoAdvanceCommand)(nil)
	_ gocmd.Commander[ResetServicesMessage]    = (*ResetServicesCommand)(nil)
)
