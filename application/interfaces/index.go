package interfaces

import "net/http"

// ApplicationContext carries a parsed request body and request-scoped
// metadata from the transport layer into controllers.
type ApplicationContext[T interface{}] struct {
	Ctx      interface{}
	Body     *T
	Keys     map[string]any
	Header   http.Header
	Param    map[string]string
	Query    map[string]string
	DeviceID string
}

func (ac *ApplicationContext[T]) GetContextData(key string) any {
	if ac.Keys == nil {
		return nil
	}
	return ac.Keys[key]
}

func (ac *ApplicationContext[T]) GetHeader(key string) *string {
	if ac.Header == nil {
		return nil
	}
	value := ac.Header.Get(key)
	if value == "" {
		return nil
	}
	return &value
}
