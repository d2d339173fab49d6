// Package content implements the Content Processor of spec.md §4.2: a
// pure, stateless pipeline that turns source bytes into target bytes by
// optionally decrypting and then optionally rendering them, in that
// strict order.
package content

import (
	"github.com/PaulYuuu/guisu/pkg/attr"
	"github.com/PaulYuuu/guisu/pkg/errors"
)

// Decryptor is the narrow capability the processor needs from the
// encryption subsystem. The core never sees key material directly.
type Decryptor interface {
	Decrypt(ciphertext []byte) (plaintext []byte, err error)
}

// TemplateRenderer is the narrow capability the processor needs from the
// templating subsystem.
type TemplateRenderer interface {
	Render(text string, context map[string]interface{}) (string, error)
}

// Processor implements the Content Processor contract. It holds no
// mutable state: identical inputs always yield identical output, which
// is what makes parallel evaluation in pkg/state safe.
type Processor struct {
	Decryptor Decryptor
	Renderer  TemplateRenderer
}

// New constructs a Processor. Either capability may be nil if the caller
// knows no entry will require it; Process returns a clear error instead
// of panicking if a nil capability is actually needed.
func New(decryptor Decryptor, renderer TemplateRenderer) *Processor {
	return &Processor{Decryptor: decryptor, Renderer: renderer}
}

// Process runs the strict four-step pipeline of spec.md §4.2: read bytes
// are supplied by the caller (the Source Reader owns I/O); decrypt if
// ENCRYPTED; render if TEMPLATE; return. Order is not configurable.
func (p *Processor) Process(sourceBytes []byte, attrs attr.FileAttributes, context map[string]interface{}) ([]byte, error) {
	data := sourceBytes

	if attrs.Has(attr.ENCRYPTED) {
		if p.Decryptor == nil {
			return nil, errors.New(errors.ErrDecryption, "entry is ENCRYPTED but no decryptor capability was configured")
		}
		plain, err := p.Decryptor.Decrypt(data)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrDecryption, "decrypt source content")
		}
		data = plain
	}

	if attrs.Has(attr.TEMPLATE) {
		if p.Renderer == nil {
			return nil, errors.New(errors.ErrRender, "entry is TEMPLATE but no renderer capability was configured")
		}
		rendered, err := p.Renderer.Render(string(data), context)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrRender, "render template content")
		}
		data = []byte(rendered)
	}

	return data, nil
}
