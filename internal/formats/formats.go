// Package formats registers the engine's built-in audio file decoders
// (WAV, MP3, Ogg Vorbis, AIFF) into internal/decode's registry. Importing
// this package for its side effect is what wires the decoder collaborator
// named in spec §6 into the engine's load path.
package formats

import (
	"github.com/soundgraph/mixengine/internal/decode"
	"github.com/soundgraph/mixengine/internal/formats/aiff"
	"github.com/soundgraph/mixengine/internal/formats/mp3"
	"github.com/soundgraph/mixengine/internal/formats/vorbis"
	"github.com/soundgraph/mixengine/internal/formats/wav"
)

func init() {
	decode.RegisterBuiltins(func(r *decode.Registry) {
		r.Register("wav", wav.Decoder{})
		r.Register("mp3", mp3.Decoder{})
		r.Register("ogg", vorbis.Decoder{})
		r.Register("oga", vorbis.Decoder{})
		r.Register("aiff", aiff.Decoder{})
		r.Register("aif", aiff.Decoder{})
	})
}
