package internal

// TokenCursor walks a token sequence with one token of lookahead. A rule reads a token with
// Advance and, when the token belongs to somebody else, gives it back with Retreat.
// The grammar never needs to give back two tokens, so Retreat may only be called once
// between two Advance calls.
type TokenCursor struct {
	tokens       []*Token
	currentPos   int // number of consumed tokens
	current      *Token
	hasRetreated bool
}

func NewTokenCursor(tokens []*Token) *TokenCursor {
	return &TokenCursor{tokens: tokens}
}

func (cursor *TokenCursor) HasMoreTokens() bool {
	return cursor.currentPos < len(cursor.tokens)
}

// Advance consumes the next token and makes it the current one.
func (cursor *TokenCursor) Advance() (*Token, error) {
	if !cursor.HasMoreTokens() {
		return nil, &ExhaustedTokensError{}
	}
	cursor.current = cursor.tokens[cursor.currentPos]
	cursor.currentPos++
	cursor.hasRetreated = false
	return cursor.current, nil
}

// Retreat un-consumes the current token. The token before it becomes the current one.
func (cursor *TokenCursor) Retreat() {
	if cursor.hasRetreated {
		panic("token cursor: retreat called twice without advance")
	}
	if cursor.currentPos == 0 {
		panic("token cursor: retreat before first advance")
	}
	cursor.currentPos--
	cursor.hasRetreated = true
	cursor.current = nil
	if cursor.currentPos > 0 {
		cursor.current = cursor.tokens[cursor.currentPos-1]
	}
}

// Current returns the last consumed token, nil before the first Advance.
func (cursor *TokenCursor) Current() *Token {
	return cursor.current
}

// PeekType returns the type of the next token without consuming it.
func (cursor *TokenCursor) PeekType() TokenType {
	if !cursor.HasMoreTokens() {
		return InvalidTP
	}
	return cursor.tokens[cursor.currentPos].Type
}
