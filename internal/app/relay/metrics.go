package relay

import "expvar"

var (
	metricHuntTotal        = expvar.NewInt("hunt_total")
	metricHuntSuccessTotal = expvar.NewInt("hunt_success_total")
	metricHuntErrorsTotal  = expvar.NewInt("hunt_errors_total")
	metricAirdropTotal     = expvar.NewInt("airdrop_total")

	metricSessionAuthorizeTotal = expvar.NewInt("session_authorize_total")
	metricRoomClaimTotal        = expvar.NewInt("room_claim_total")
	metricPublishErrorsTotal    = expvar.NewInt("hunt_publish_errors_total")
)
