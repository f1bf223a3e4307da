package loader

import (
	"image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

func registerImageDecoders(r *Registry) {
	r.RegisterImage("png", png.Decode)
	r.RegisterImage("jpg", jpeg.Decode)
	r.RegisterImage("jpeg", jpeg.Decode)
	r.RegisterImage("gif", gif.Decode)
	r.RegisterImage("bmp", bmp.Decode)
	r.RegisterImage("tif", tiff.Decode)
	r.RegisterImage("tiff", tiff.Decode)
	r.RegisterImage("webp", webp.Decode)
}
