package renderer

import (
	"encoding/binary"
	"fmt"
	"log"
	"math"
	"os"
	"unsafe"

	vk "github.com/goki/vulkan"
)

// RENDER_STATE_SIZE is the push constant block of a RenderState: both colors as vec4, then radius and length,
// padded to a multiple of 16 Byte.
const RENDER_STATE_SIZE = 48

// Bytes lays the state out as std430 expects it: ColorFrom, ColorTo, Radius, Length.
func (s RenderState) Bytes() []byte {
	b := make([]byte, RENDER_STATE_SIZE)
	for i, f := range s.ColorFrom {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(f))
	}
	for i, f := range s.ColorTo {
		binary.LittleEndian.PutUint32(b[16+i*4:], math.Float32bits(f))
	}
	binary.LittleEndian.PutUint32(b[32:], math.Float32bits(s.Radius))
	binary.LittleEndian.PutUint32(b[36:], math.Float32bits(s.Length))
	return b
}

func RenderStatePushConstantRange() vk.PushConstantRange {
	return vk.PushConstantRange{
		StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		Offset:     0,
		Size:       RENDER_STATE_SIZE,
	}
}

// PushRenderState returns a VulkanContext.OnState handler that pushes the state as constants of layout.
func PushRenderState(layout vk.PipelineLayout) func(vk.CommandBuffer, int, RenderState) {
	return func(cmd vk.CommandBuffer, pass int, state RenderState) {
		b := state.Bytes()
		vk.CmdPushConstants(cmd, layout, vk.ShaderStageFlags(vk.ShaderStageVertexBit), 0, RENDER_STATE_SIZE, unsafe.Pointer(&b[0]))
	}
}

// CreatePipelineLayout creates a layout with the descriptor set layouts given and the RenderState push constants.
func CreatePipelineLayout(d vk.Device, setLayouts []vk.DescriptorSetLayout) (vk.PipelineLayout, error) {
	info := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         uint32(len(setLayouts)),
		PSetLayouts:            setLayouts,
		PushConstantRangeCount: 1,
		PPushConstantRanges:    []vk.PushConstantRange{RenderStatePushConstantRange()},
	}
	var pl vk.PipelineLayout
	if err := vk.Error(vk.CreatePipelineLayout(d, &info, nil, &pl)); err != nil {
		return nil, fmt.Errorf("failed to create pipeline layout: %w", err)
	}
	return pl, nil
}

// ShaderStageInfo binds module as stage, the entry point is always "main".
func ShaderStageInfo(stage vk.ShaderStageFlagBits, module vk.ShaderModule) vk.PipelineShaderStageCreateInfo {
	return vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  stage,
		Module: module,
		PName:  "main\x00", // entrypoint -> function name in the shader
	}
}

// LoadShader reads a '.spv' file and creates a shader module of it along with the stage info required to bind
// it to a pipeline. The module can be destroyed with DeleteShaderMod as soon as the pipeline is created.
func LoadShader(d vk.Device, path string, stage vk.ShaderStageFlagBits) (vk.ShaderModule, vk.PipelineShaderStageCreateInfo, error) {
	code, err := readShaderCode(path)
	if err != nil {
		return nil, vk.PipelineShaderStageCreateInfo{}, err
	}
	createInfo := &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code) * 4),
		PCode:    code,
	}
	var module vk.ShaderModule
	if err := vk.Error(vk.CreateShaderModule(d, createInfo, nil, &module)); err != nil {
		return nil, vk.PipelineShaderStageCreateInfo{}, fmt.Errorf("failed to create shader module of %s: %w", path, err)
	}
	log.Printf("Created shader module: %v", module)
	return module, ShaderStageInfo(stage, module), nil
}

func DeleteShaderMod(d vk.Device, mod vk.ShaderModule) {
	vk.DestroyShaderModule(d, mod, nil)
}

// readShaderCode returns SPIR-V as words, SPIR-V is always a whole number of 32 bit words.
func readShaderCode(path string) ([]uint32, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shader file: %w", err)
	}
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, fmt.Errorf("shader file %s holds %d Byte, which is no SPIR-V", path, len(b))
	}
	log.Printf("Read shader file (%s) of size: %dByte", path, len(b))
	code := make([]uint32, len(b)/4)
	for i := range code {
		code[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return code, nil
}
