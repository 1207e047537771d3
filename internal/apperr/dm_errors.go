package apperr

var (
	ErrSelfConversation     = Conflict("cannot start a conversation with yourself")
	ErrSelfBlock            = Conflict("cannot block yourself")
	ErrAlreadyBlocked       = Conflict("account is already blocked")
	ErrBlockNotFound        = NotFound("block not found")
	ErrProtectedAccount     = Forbidden("this account cannot be blocked")
	ErrBlocked              = Forbidden("you cannot interact with this account")
	ErrAccountNotFound      = NotFound("account not found")
	ErrConversationNotFound = NotFound("conversation not found")
	ErrMessageNotFound      = NotFound("message not found")
	ErrNotParticipant       = Unauthorized("not a participant of this conversation")
	ErrNotSender            = Unauthorized("only the sender can delete this message for everyone")
	ErrEmptyContent         = Validation("message content cannot be empty")
	ErrContentTooLong       = Validation("message content is too long")
	ErrInvalidKind          = Validation("unknown message kind")
	ErrInvalidReply         = InvalidReply("reply target is not an earlier message of this conversation")
)
