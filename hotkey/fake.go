package hotkey

type FakeHotkey struct {
	keydown chan struct{}
	keyup   chan struct{}
	regErr  error
}

func NewFake() *FakeHotkey {
	return &FakeHotkey{
		keydown: make(chan struct{}, 1),
		keyup:   make(chan struct{}, 1),
	}
}

// NewFailingFake returns a hotkey whose Register fails with err.
func NewFailingFake(err error) *FakeHotkey {
	f := NewFake()
	f.regErr = err
	return f
}

func (f *FakeHotkey) Register() error          { return f.regErr }
func (f *FakeHotkey) Unregister()              {}
func (f *FakeHotkey) Keydown() <-chan struct{} { return f.keydown }
func (f *FakeHotkey) Keyup() <-chan struct{}   { return f.keyup }

func (f *FakeHotkey) SimKeydown() { f.keydown <- struct{}{} }
func (f *FakeHotkey) SimKeyup()   { f.keyup <- struct{}{} }

// SimPress sends a keydown followed by a keyup.
func (f *FakeHotkey) SimPress() {
	f.SimKeydown()
	f.SimKeyup()
}
