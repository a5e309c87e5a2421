package classifier

// Labels is the closed, ordered set of classes produced by the model.
// The order matches the output logits of the exported ResNet-50 head.
var Labels = []string{
	"bacterial_blight",
	"cercospora_leaf_blight",
	"downey_mildew",
	"frogeye",
	"healthy",
	"potassium_deficiency",
	"soybean_rust",
	"target_spot",
}

// IsLabel reports whether s is one of Labels.
func IsLabel(s string) bool {
	for _, l := range Labels {
		if l == s {
			return true
		}
	}
	return false
}
