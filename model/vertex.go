package model

import (
	vm "GPU_cylinder_mesh/vector_math"

	vk "github.com/goki/vulkan"
)

// Vertex streams are kept in separate buffers so the colors can be replaced without touching the geometry.
// Each stream gets its own binding, each element is one vm.Vector read as 4 floats.
const (
	POSITION_BINDING uint32 = iota
	NORMAL_BINDING
	COLOR_BINDING
)

func GetVertexBindingDescriptions() []vk.VertexInputBindingDescription {
	bindings := []uint32{POSITION_BINDING, NORMAL_BINDING, COLOR_BINDING}
	desc := make([]vk.VertexInputBindingDescription, len(bindings))
	for i, b := range bindings {
		desc[i] = vk.VertexInputBindingDescription{
			Binding:   b,
			Stride:    uint32(vm.VectorByteSize),
			InputRate: vk.VertexInputRateVertex,
		}
	}
	return desc
}

// GetVertexAttributeDescriptions maps shader location n to binding n, so the vertex shader expects
// 'layout(location = 0) in vec4 pos', 'layout(location = 1) in vec4 normal' and 'layout(location = 2) in vec4 color'.
func GetVertexAttributeDescriptions() []vk.VertexInputAttributeDescription {
	bindings := []uint32{POSITION_BINDING, NORMAL_BINDING, COLOR_BINDING}
	desc := make([]vk.VertexInputAttributeDescription, len(bindings))
	for i, b := range bindings {
		desc[i] = vk.VertexInputAttributeDescription{
			Location: b,
			Binding:  b,
			Format:   vk.FormatR32g32b32a32Sfloat,
			Offset:   0,
		}
	}
	return desc
}
