//go:build windows

package process_windows

import (
	"fmt"
	"sync"
	"syscall"
	"unsafe"

	"ffsplit/process"
	"ffsplit/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

var (
	modkernel32              = syscall.NewLazyDLL("kernel32.dll")
	procOpenProcess          = modkernel32.NewProc("OpenProcess")
	procReadProcessMemory    = modkernel32.NewProc("ReadProcessMemory")
	procCloseHandle          = modkernel32.NewProc("CloseHandle")
	procVirtualQueryEx       = modkernel32.NewProc("VirtualQueryEx")
	procCreateToolhelp32Snap = modkernel32.NewProc("CreateToolhelp32Snapshot")
	procModule32FirstW       = modkernel32.NewProc("Module32FirstW")
	procModule32NextW        = modkernel32.NewProc("Module32NextW")
)

const (
	PROCESS_VM_READ           = 0x0010
	PROCESS_QUERY_INFORMATION = 0x0400

	memCommit = 0x1000

	pageNoAccess         = 0x01
	pageReadonly         = 0x02
	pageReadWrite        = 0x04
	pageWriteCopy        = 0x08
	pageExecute          = 0x10
	pageExecuteRead      = 0x20
	pageExecuteReadWrite = 0x40
	pageExecuteWriteCopy = 0x80
	pageGuard            = 0x100

	th32csSnapModule   = 0x0008
	th32csSnapModule32 = 0x0010

	invalidHandleValue = ^uintptr(0)
)

type memoryBasicInformation struct {
	BaseAddress       uintptr
	AllocationBase    uintptr
	AllocationProtect uint32
	PartitionID       uint16
	RegionSize        uintptr
	State             uint32
	Protect           uint32
	Type              uint32
}

type moduleEntry32 struct {
	Size         uint32
	ModuleID     uint32
	ProcessID    uint32
	GlblcntUsage uint32
	ProccntUsage uint32
	ModBaseAddr  uintptr
	ModBaseSize  uint32
	ModuleHandle uintptr
	Module       [256]uint16
	ExePath      [260]uint16
}

// WindowsProcess implements the process.Process interface for Windows systems
type WindowsProcess struct {
	pid    process.ProcessID
	handle syscall.Handle
	log    *logger.Logger
	mm     memory_map.MemoryMap
	mu     sync.Mutex
}

// New creates a new WindowsProcess instance
func New() process.Process {
	return &WindowsProcess{
		log: logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open")),
	}
}

// NewWithPID creates a new WindowsProcess instance and opens it with the given PID
func NewWithPID(pid process.ProcessID) (process.Process, error) {
	p := &WindowsProcess{}
	err := p.Open(pid)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *WindowsProcess) Open(pid process.ProcessID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Read + query only; this library never writes the target
	handle, _, err := procOpenProcess.Call(uintptr(PROCESS_VM_READ|PROCESS_QUERY_INFORMATION), 0, uintptr(pid))
	if handle == 0 {
		return fmt.Errorf("OpenProcess failed for PID %d: %v", pid, err)
	}

	p.pid = pid
	p.handle = syscall.Handle(handle)
	p.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("process-%d", pid)))

	if err := p.updateMemoryMapInternal(); err != nil {
		p.log.Warn("Failed to initialize memory map: ", err)
	}

	p.log.Infoln("Process opened")
	return nil
}

func (p *WindowsProcess) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle != 0 {
		ret, _, err := procCloseHandle.Call(uintptr(p.handle))
		if ret == 0 {
			return fmt.Errorf("CloseHandle failed: %v", err)
		}
		p.handle = 0
	}

	p.pid = 0
	p.mm = nil
	p.log = logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open"))
	p.log.Infoln("Process closed")

	return nil
}

func (p *WindowsProcess) GetPID() process.ProcessID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pid
}

func (p *WindowsProcess) UpdateMemoryMap() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.updateMemoryMapInternal()
}

func (p *WindowsProcess) updateMemoryMapInternal() error {
	if p.handle == 0 {
		return process.ErrProcessNotOpen
	}

	var mm memory_map.MemoryMap
	addr := uintptr(0)

	for {
		var mbi memoryBasicInformation
		ret, _, _ := procVirtualQueryEx.Call(
			uintptr(p.handle),
			addr,
			uintptr(unsafe.Pointer(&mbi)),
			unsafe.Sizeof(mbi),
		)
		if ret == 0 {
			break // past the end of the address space
		}

		if mbi.State == memCommit {
			mm = append(mm, memory_map.MemoryMapItem{
				Address: uint64(mbi.BaseAddress),
				Size:    uint(mbi.RegionSize),
				Perms:   protectToPerms(mbi.Protect),
			})
		}

		next := mbi.BaseAddress + mbi.RegionSize
		if next <= addr {
			break // no forward progress, corrupt region info
		}
		addr = next
	}

	p.annotateModules(mm)
	mm.Sort()
	p.mm = mm
	return nil
}

// annotateModules stamps module file paths onto the regions they cover so
// MemoryMap.ModuleBase can answer by name.
func (p *WindowsProcess) annotateModules(mm memory_map.MemoryMap) {
	snap, _, _ := procCreateToolhelp32Snap.Call(uintptr(th32csSnapModule|th32csSnapModule32), uintptr(p.pid))
	if snap == invalidHandleValue || snap == 0 {
		return
	}
	defer procCloseHandle.Call(snap)

	var me moduleEntry32
	me.Size = uint32(unsafe.Sizeof(me))

	ret, _, _ := procModule32FirstW.Call(snap, uintptr(unsafe.Pointer(&me)))
	for ret != 0 {
		base := uint64(me.ModBaseAddr)
		end := base + uint64(me.ModBaseSize)
		path := syscall.UTF16ToString(me.ExePath[:])

		for i := range mm {
			if mm[i].Address >= base && mm[i].Address < end {
				mm[i].Path = path
			}
		}

		ret, _, _ = procModule32NextW.Call(snap, uintptr(unsafe.Pointer(&me)))
	}
}

func protectToPerms(protect uint32) string {
	if protect&pageGuard != 0 {
		return "---p"
	}
	switch protect &^ 0xFFFFFF00 {
	case pageReadonly:
		return "r--p"
	case pageReadWrite, pageWriteCopy:
		return "rw-p"
	case pageExecute:
		return "--xp"
	case pageExecuteRead:
		return "r-xp"
	case pageExecuteReadWrite, pageExecuteWriteCopy:
		return "rwxp"
	case pageNoAccess:
		return "---p"
	default:
		return "---p"
	}
}

func (p *WindowsProcess) IsValidAddress(addr process.ProcessMemoryAddress) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !process.CanonicalAddress(addr) {
		return false
	}
	return p.mm.IsValidAddress(uint64(addr))
}

func (p *WindowsProcess) GetMemoryMap() (memory_map.MemoryMap, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle == 0 {
		return nil, process.ErrProcessNotOpen
	}
	result := make(memory_map.MemoryMap, len(p.mm))
	copy(result, p.mm)
	return result, nil
}

// ModuleBase returns the load address of a mapped module by basename.
func (p *WindowsProcess) ModuleBase(name string) (process.ProcessMemoryAddress, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle == 0 {
		return 0, process.ErrProcessNotOpen
	}

	base, ok := p.mm.ModuleBase(name)
	if !ok {
		return 0, fmt.Errorf("module %q: %w", name, process.ErrModuleNotFound)
	}
	return process.ProcessMemoryAddress(base), nil
}

func (p *WindowsProcess) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}

	p.mu.Lock()
	handle := p.handle
	valid := process.CanonicalAddress(addr) && p.mm.IsValidAddress(uint64(addr))
	// Release the lock before the system call
	p.mu.Unlock()

	if handle == 0 {
		return nil, process.ErrProcessNotOpen
	}
	if !valid {
		return nil, fmt.Errorf("read %v at %v: %w", size, addr, process.ErrAddressNotMapped)
	}

	buf := make([]byte, size)
	var bytesRead uintptr
	ret, _, err := procReadProcessMemory.Call(
		uintptr(handle),
		uintptr(addr),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(size),
		uintptr(unsafe.Pointer(&bytesRead)),
	)

	if ret == 0 {
		return nil, fmt.Errorf("ReadProcessMemory at %v failed: %v", addr, err)
	}

	if bytesRead != uintptr(size) {
		return nil, fmt.Errorf("%w: %d of %d bytes", process.ErrPartialRead, bytesRead, size)
	}

	return buf, nil
}
