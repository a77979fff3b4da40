package atlas

// Image is an immutable descriptor of a source image: its path and its
// true pixel dimensions. A zero-value Image is invalid and must never be
// inserted into a Tree.
type Image struct {
	path   string
	width  uint32
	height uint32
	valid  bool
}

// NewImage constructs a valid image descriptor for path with the given
// pixel dimensions.
func NewImage(path string, width, height uint32) Image {
	return Image{path: path, width: width, height: height, valid: true}
}

// Path returns the source path the descriptor was constructed with.
func (img Image) Path() string { return img.path }

// Width returns the image width in pixels.
func (img Image) Width() uint32 { return img.width }

// Height returns the image height in pixels.
func (img Image) Height() uint32 { return img.height }

// Valid reports whether this descriptor was produced by NewImage, as
// opposed to being a zero value.
func (img Image) Valid() bool { return img.valid }

// Size returns the image's dimensions as a Size.
func (img Image) Size() Size { return Size{Width: img.width, Height: img.height} }
