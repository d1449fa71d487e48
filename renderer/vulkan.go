package renderer

import (
	"errors"
	"fmt"
	"log"
	"unsafe"

	vk "github.com/goki/vulkan"
)

// This section backs the Context interface with Vulkan device memory. Creating the instance, the logical device
// and the swap chain stays with the caller, the VulkanContext only needs a device to allocate on and a command
// buffer to record draws into. Buffers are host visible and coherent so an upload is a plain map, copy, unmap.

// Device is the part of a Vulkan device set up that buffer allocation depends on.
type Device struct {
	D             vk.Device
	PdMemoryProps vk.PhysicalDeviceMemoryProperties
}

// NewDevice reads the memory properties of pd, which are needed to pick a memory type for each buffer.
func NewDevice(pd vk.PhysicalDevice, d vk.Device) *Device {
	return &Device{
		D:             d,
		PdMemoryProps: readDeviceMemoryProperties(pd),
	}
}

type deviceBuffer struct {
	handle    vk.Buffer
	deviceMem vk.DeviceMemory
	size      vk.DeviceSize
	kind      BufferKind
}

type VulkanContext struct {
	dc      *Device
	cmd     vk.CommandBuffer
	buffers map[Buffer]*deviceBuffer
	next    Buffer

	// OnState receives the render state attached to a draw call, see PushRenderState. Optional.
	OnState func(cmd vk.CommandBuffer, pass int, state RenderState)
}

func NewVulkanContext(dc *Device) *VulkanContext {
	return &VulkanContext{
		dc:      dc,
		buffers: map[Buffer]*deviceBuffer{},
		next:    1,
	}
}

// BeginRecording sets the command buffer that following DrawIndexed calls record into. The caller owns begin and
// end of the command buffer itself as well as the render pass and pipeline bindings.
func (c *VulkanContext) BeginRecording(cmd vk.CommandBuffer) {
	c.cmd = cmd
}

func (c *VulkanContext) AllocateBuffer(kind BufferKind, size int) (Buffer, error) {
	if size <= 0 {
		return 0, fmt.Errorf("cannot allocate %s buffer of %d bytes", kind, size)
	}
	bufferInfo := vk.BufferCreateInfo{
		SType:                 vk.StructureTypeBufferCreateInfo,
		PNext:                 nil,
		Flags:                 0,
		Size:                  vk.DeviceSize(size),
		Usage:                 bufferUsage(kind),
		SharingMode:           vk.SharingModeExclusive,
		QueueFamilyIndexCount: 0,
		PQueueFamilyIndices:   nil,
	}
	var buf vk.Buffer
	if err := vk.Error(vk.CreateBuffer(c.dc.D, &bufferInfo, nil, &buf)); err != nil {
		return 0, fmt.Errorf("failed to create %s buffer: %w", kind, err)
	}

	bufRequirements := readBufferMemoryRequirements(c.dc.D, buf)
	memType, err := findMemoryType(c.dc, bufRequirements.MemoryTypeBits,
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		vk.DestroyBuffer(c.dc.D, buf, nil)
		return 0, err
	}

	// Allocate device memory
	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		PNext:           nil,
		AllocationSize:  bufRequirements.Size,
		MemoryTypeIndex: memType,
	}
	var deviceMem vk.DeviceMemory
	if err := vk.Error(vk.AllocateMemory(c.dc.D, &allocInfo, nil, &deviceMem)); err != nil {
		vk.DestroyBuffer(c.dc.D, buf, nil)
		return 0, fmt.Errorf("failed to allocate %s buffer memory: %w", kind, err)
	}

	// Associate allocated memory with buffer handle
	if err := vk.Error(vk.BindBufferMemory(c.dc.D, buf, deviceMem, 0)); err != nil {
		vk.DestroyBuffer(c.dc.D, buf, nil)
		vk.FreeMemory(c.dc.D, deviceMem, nil)
		return 0, fmt.Errorf("failed to bind device memory to %s buffer: %w", kind, err)
	}

	h := c.next
	c.next++
	c.buffers[h] = &deviceBuffer{
		handle:    buf,
		deviceMem: deviceMem,
		size:      vk.DeviceSize(size),
		kind:      kind,
	}
	log.Printf("Allocated %s buffer %d (%d Byte)", kind, h, size)
	return h, nil
}

// Upload maps the device memory of buf, copies payload over and unmaps again. Only a full buffer worth of
// payload starting at offset 0 is accepted.
func (c *VulkanContext) Upload(buf Buffer, payload []byte) error {
	db, ok := c.buffers[buf]
	if !ok {
		return fmt.Errorf("upload to unknown buffer %d", buf)
	}
	if db.size != vk.DeviceSize(uint64(len(payload))) {
		return fmt.Errorf("cant copy %d bytes to %s buffer of %d bytes", len(payload), db.kind, db.size)
	}
	var pData unsafe.Pointer
	if err := vk.Error(vk.MapMemory(c.dc.D, db.deviceMem, 0, db.size, 0, &pData)); err != nil {
		return fmt.Errorf("failed to map %s buffer memory: %w", db.kind, err)
	}
	vk.Memcopy(pData, payload)
	vk.UnmapMemory(c.dc.D, db.deviceMem)
	return nil
}

// DrawIndexed binds the three vertex streams to bindings 0 to 2 in the order position, normal, color, binds the
// index buffer and records one indexed draw.
func (c *VulkanContext) DrawIndexed(pass int, call DrawCall) error {
	if c.cmd == nil {
		return errors.New("no command buffer to record into, call BeginRecording first")
	}
	vertBuffers := make([]vk.Buffer, 0, 3)
	for _, b := range []Buffer{call.Positions, call.Normals, call.Colors} {
		db, ok := c.buffers[b]
		if !ok {
			return fmt.Errorf("draw references unknown buffer %d", b)
		}
		vertBuffers = append(vertBuffers, db.handle)
	}
	idx, ok := c.buffers[call.Indices]
	if !ok {
		return fmt.Errorf("draw references unknown index buffer %d", call.Indices)
	}
	if call.HasState && c.OnState != nil {
		c.OnState(c.cmd, pass, call.State)
	}
	offsets := []vk.DeviceSize{0, 0, 0}
	vk.CmdBindVertexBuffers(c.cmd, 0, uint32(len(vertBuffers)), vertBuffers, offsets)
	vk.CmdBindIndexBuffer(c.cmd, idx.handle, 0, vk.IndexTypeUint32)
	vk.CmdDrawIndexed(c.cmd, call.IndexCount, 1, 0, 0, 0)
	return nil
}

func (c *VulkanContext) ReleaseBuffer(buf Buffer) {
	db, ok := c.buffers[buf]
	if !ok {
		return
	}
	vk.DestroyBuffer(c.dc.D, db.handle, nil)
	vk.FreeMemory(c.dc.D, db.deviceMem, nil)
	delete(c.buffers, buf)
}

// Destroy frees all buffers that are still allocated. The device has to be idle.
func (c *VulkanContext) Destroy() {
	if len(c.buffers) > 0 {
		log.Printf("Leftover buffers in vulkan context!: %v", len(c.buffers))
	}
	for b := range c.buffers {
		c.ReleaseBuffer(b)
	}
}

func bufferUsage(kind BufferKind) vk.BufferUsageFlags {
	if kind == INDEX_BUFFER {
		return vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit)
	}
	return vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit)
}

func findMemoryType(dc *Device, typeFilter uint32, propFlags vk.MemoryPropertyFlags) (uint32, error) {
	for i := uint32(0); i < dc.PdMemoryProps.MemoryTypeCount; i++ {
		ofType := (typeFilter & (1 << i)) > 0
		hasProperties := dc.PdMemoryProps.MemoryTypes[i].PropertyFlags&propFlags == propFlags
		if ofType && hasProperties {
			return i, nil
		}
	}
	return 0, errors.New("failed to find suitable memory type")
}

// Read operations that require duplicated function calls, allocations and dereferencing.

func readDeviceMemoryProperties(pd vk.PhysicalDevice) vk.PhysicalDeviceMemoryProperties {
	var pdMemProps vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(pd, &pdMemProps)
	pdMemProps.Deref()
	for i := range pdMemProps.MemoryTypes {
		pdMemProps.MemoryTypes[i].Deref()
	}
	return pdMemProps
}

func readBufferMemoryRequirements(device vk.Device, b vk.Buffer) vk.MemoryRequirements {
	var memRequirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(device, b, &memRequirements)
	memRequirements.Deref()
	return memRequirements
}
