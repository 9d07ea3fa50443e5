package email

const (
	subjectQuotationSentFmt      = "Offerte %s staat voor u klaar"
	subjectQuotationRevisedFmt   = "Offerte %s is bijgewerkt"
	subjectQuotationCounteredFmt = "Tegenvoorstel ontvangen op offerte %s"
	subjectQuotationFollowUpFmt  = "Herinnering: offerte %s wacht op uw reactie"
	subjectQuotationAcceptedFmt  = "Offerte %s geaccepteerd"
	subjectQuotationRejectedFmt  = "Offerte %s afgewezen"
)
