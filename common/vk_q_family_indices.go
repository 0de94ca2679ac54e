package common

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

type QueueFamilyIndices struct {
	GraphicsFamily *uint32
	PresentFamily  *uint32
}

// findQueueFamilies prefers a family able to both render and present. Without one, the first graphics
// capable and the first presenting family are reported separately.
func findQueueFamilies(qFamilies []vk.QueueFamilyProperties, presentable func(family uint32) (bool, error)) (*QueueFamilyIndices, error) {
	indices := &QueueFamilyIndices{
		GraphicsFamily: nil,
		PresentFamily:  nil,
	}
	for i := range qFamilies {
		family := uint32(i)
		graphics := isBitSet(qFamilies[i], vk.QueueGraphicsBit)
		present, err := presentable(family)
		if err != nil {
			return nil, errors.Wrapf(err, "query present support of queue family %d", i)
		}
		if graphics && present {
			return &QueueFamilyIndices{GraphicsFamily: &family, PresentFamily: &family}, nil
		}
		if graphics && indices.GraphicsFamily == nil {
			indices.GraphicsFamily = &family
		}
		if present && indices.PresentFamily == nil {
			indices.PresentFamily = &family
		}
	}
	if indices.GraphicsFamily == nil {
		return nil, errors.New("unable to find graphics capable queue family")
	}
	if indices.PresentFamily == nil {
		return nil, errors.New("unable to find present capable queue family for given surface")
	}
	return indices, nil
}

func isBitSet(qFamily vk.QueueFamilyProperties, bit vk.QueueFlagBits) bool {
	return vk.QueueFlagBits(qFamily.QueueFlags)&bit > 0
}

func (q *QueueFamilyIndices) isAllQueuesFound() bool {
	return q.GraphicsFamily != nil && q.PresentFamily != nil
}

// isShared reports whether rendering and presentation happen on the same family.
func (q *QueueFamilyIndices) isShared() bool {
	return q.isAllQueuesFound() && *q.GraphicsFamily == *q.PresentFamily
}

// Families returns the distinct family indices, graphics first.
func (q *QueueFamilyIndices) Families() []uint32 {
	var uniqIndices []uint32
	if q.GraphicsFamily != nil {
		uniqIndices = append(uniqIndices, *q.GraphicsFamily)
	}
	if q.PresentFamily != nil && !inList(*q.PresentFamily, uniqIndices) {
		uniqIndices = append(uniqIndices, *q.PresentFamily)
	}
	return uniqIndices
}

func (q *QueueFamilyIndices) toQueueCreateInfos() []vk.DeviceQueueCreateInfo {
	uniqIndices := q.Families()
	infos := make([]vk.DeviceQueueCreateInfo, len(uniqIndices))
	for i := range uniqIndices {
		infos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			PNext:            nil,
			Flags:            0,
			QueueFamilyIndex: uniqIndices[i],
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}
	return infos
}

func inList(e uint32, l []uint32) bool {
	for i := range l {
		if l[i] == e {
			return true
		}
	}
	return false
}
