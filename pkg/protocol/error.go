package protocol

// ErrorMessage is sent to the client when the server rejects a frame or an
// event handler fails.
type ErrorMessage struct {
	Code    string // registered error code, e.g. "P001"
	Message string
	Fatal   bool // the server closes the connection after sending it
}

// EncodeErrorMessage encodes em as an error payload.
func EncodeErrorMessage(em *ErrorMessage) []byte {
	e := NewEncoder()
	e.WriteString(em.Code)
	e.WriteString(em.Message)
	e.WriteBool(em.Fatal)
	return e.Bytes()
}

// DecodeErrorMessage decodes an error payload.
func DecodeErrorMessage(data []byte) (*ErrorMessage, error) {
	d := NewDecoder(data)
	var (
		em  ErrorMessage
		err error
	)
	if em.Code, err = d.ReadString(); err != nil {
		return nil, malformed("error code", err)
	}
	if em.Message, err = d.ReadString(); err != nil {
		return nil, malformed("error message", err)
	}
	if em.Fatal, err = d.ReadBool(); err != nil {
		return nil, malformed("error flag", err)
	}
	return &em, nil
}

func (em *ErrorMessage) Error() string {
	if em.Fatal {
		return "fatal: " + em.Code + ": " + em.Message
	}
	return em.Code + ": " + em.Message
}
