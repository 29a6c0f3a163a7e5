package irc

// Reply codes the dispatcher acts on
const (
	RplWelcome       = 1
	RplYourHost      = 2
	RplCreated       = 3
	RplMyInfo        = 4
	RplLuserClient   = 251
	RplLuserChannels = 254
	RplWhoisUser     = 311
	RplWhoisServer   = 312
	RplWhoisOperator = 313
	RplWhoisIdle     = 317
	RplEndOfWhois    = 318
	RplWhoisChannels = 319
	RplListStart     = 321
	RplList          = 322
	RplListEnd       = 323
	RplTopic         = 332
	RplVersion       = 351
	RplNamReply      = 353
	RplMotd          = 372
	RplMotdStart     = 375
	RplEndOfMotd     = 376
)

// Error codes the dispatcher acts on
const (
	ErrNoMotd            = 422
	ErrNoNicknameGiven   = 431
	ErrErroneusNickname  = 432
	ErrNicknameInUse     = 433
	ErrNickCollision     = 436
	ErrNeedMoreParams    = 461
	ErrAlreadyRegistered = 462
)

// unsupportedNumerics are replies servers commonly send that carry nothing
// the engine needs. They are reported but never treated as unknown.
var unsupportedNumerics = map[int]bool{
	5:   true, // ISUPPORT
	250: true, // highest connection count
	252: true, // operators online
	253: true, // unknown connections
	255: true, // local clients/servers
	265: true, // local users
	266: true, // global users
	333: true, // topic set by
	366: true, // end of names
}

// isWelcomeClass reports whether code counts as the server accepting our
// registration
func isWelcomeClass(code int) bool {
	switch code {
	case RplWelcome, RplYourHost, RplCreated, RplMyInfo, ErrNoMotd:
		return true
	default:
		return false
	}
}
