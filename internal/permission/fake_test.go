package permission

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/billie-coop/metanet/internal/host"
)

type call struct {
	method    string
	requestID string
	granted   host.GroupGrant
}

// fakeHost records decision and focus calls and lets tests emit events.
type fakeHost struct {
	mu         sync.Mutex
	focused    bool
	requested  int
	relinquish int
	calls      []call
	failNext   error
	// entered and release, when set, hold decision calls until release closes.
	entered chan struct{}
	release chan struct{}

	nextID    host.CallbackID
	callbacks map[host.EventName]map[host.CallbackID]host.Callback
}

func newFakeHost(focused bool) *fakeHost {
	return &fakeHost{
		focused:   focused,
		callbacks: make(map[host.EventName]map[host.CallbackID]host.Callback),
	}
}

func (f *fakeHost) BindCallback(name host.EventName, cb host.Callback) host.CallbackID {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	if f.callbacks[name] == nil {
		f.callbacks[name] = make(map[host.CallbackID]host.Callback)
	}
	f.callbacks[name][f.nextID] = cb
	return f.nextID
}

func (f *fakeHost) UnbindCallback(name host.EventName, id host.CallbackID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.callbacks[name], id)
}

func (f *fakeHost) bound(name host.EventName) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.callbacks[name])
}

func (f *fakeHost) emit(name host.EventName, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	f.mu.Lock()
	cbs := make([]host.Callback, 0, len(f.callbacks[name]))
	for _, cb := range f.callbacks[name] {
		cbs = append(cbs, cb)
	}
	f.mu.Unlock()
	for _, cb := range cbs {
		cb(raw)
	}
}

func (f *fakeHost) record(method, requestID string, granted host.GroupGrant) error {
	if f.release != nil {
		f.entered <- struct{}{}
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	f.calls = append(f.calls, call{method: method, requestID: requestID, granted: granted})
	return nil
}

func (f *fakeHost) recorded() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]call, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeHost) GrantProtocolPermission(_ context.Context, id string) error {
	return f.record("grantProtocolPermission", id, host.GroupGrant{})
}

func (f *fakeHost) DenyProtocolPermission(_ context.Context, id string) error {
	return f.record("denyProtocolPermission", id, host.GroupGrant{})
}

func (f *fakeHost) GrantBasketAccess(_ context.Context, id string) error {
	return f.record("grantBasketAccess", id, host.GroupGrant{})
}

func (f *fakeHost) DenyBasketAccess(_ context.Context, id string) error {
	return f.record("denyBasketAccess", id, host.GroupGrant{})
}

func (f *fakeHost) GrantCertificateAccess(_ context.Context, id string) error {
	return f.record("grantCertificateAccess", id, host.GroupGrant{})
}

func (f *fakeHost) DenyCertificateAccess(_ context.Context, id string) error {
	return f.record("denyCertificateAccess", id, host.GroupGrant{})
}

func (f *fakeHost) GrantGroupPermission(_ context.Context, id string, granted host.GroupGrant) error {
	return f.record("grantGroupPermission", id, granted)
}

func (f *fakeHost) DenyGroupPermission(_ context.Context, id string) error {
	return f.record("denyGroupPermission", id, host.GroupGrant{})
}

func (f *fakeHost) IsFocused(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.focused, nil
}

func (f *fakeHost) RequestFocus(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requested++
	f.focused = true
	return nil
}

func (f *fakeHost) RelinquishFocus(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.relinquish++
	f.focused = false
	return nil
}
