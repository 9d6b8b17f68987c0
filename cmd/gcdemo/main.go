// Command gcdemo exercises the allocator and collector packages end to
// end: a handful of simulated processes allocate objects and have their
// heaps collected on a small worker pool, logging each cycle's summary via
// package telemetry. No messages are sent; each process's mailbox stays
// empty.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nyxvm/corevm/collector"
	"github.com/nyxvm/corevm/config"
	"github.com/nyxvm/corevm/finalize"
	"github.com/nyxvm/corevm/galloc"
	"github.com/nyxvm/corevm/local"
	"github.com/nyxvm/corevm/mailbox"
	"github.com/nyxvm/corevm/object"
	"github.com/nyxvm/corevm/request"
	"github.com/nyxvm/corevm/roots"
)

// demoProcess is the simplest possible roots.Provider: its live set is
// whatever it has stashed in registers, it never touches a mailbox of its
// own, and it reports a fixed name and status — enough to drive a
// collection cycle without a real interpreter loop.
type demoProcess struct {
	id        string
	registers []object.Pointer
}

func (p *demoProcess) ContextRoots(pointers *[]object.Pointer) {
	*pointers = append(*pointers, p.registers...)
}
func (p *demoProcess) MailboxRoots(pointers *[]object.Pointer) {}
func (p *demoProcess) RememberedSet() []object.Pointer         { return nil }
func (p *demoProcess) RunningCode() string                     { return p.id }
func (p *demoProcess) Status() roots.Status                    { return roots.Running }

var _ roots.Provider = (*demoProcess)(nil)

func main() {
	log.Println("gcdemo starting")

	cfgPath := "config.toml"
	if p := os.Getenv("COREVM_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("gcdemo: no config at %s (%v), using defaults", cfgPath, err)
		d := config.Default()
		cfg = &d
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	global := galloc.New(*cfg)
	pool := finalize.New(finalize.DefaultWorkers)
	defer pool.Close()

	workers := collector.NewWorkerPool(collector.DefaultWorkers)
	defer workers.Close()

	dispatcher := request.NewDispatcher(workers)

	const processCount = 3
	var wg sync.WaitGroup

	for i := 0; i < processCount; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			runProcess(ctx, index, global, cfg, pool, dispatcher)
		}(i)
	}

	wg.Wait()
	log.Println("gcdemo stopped")
}

func runProcess(ctx context.Context, index int, global *galloc.GlobalAllocator, cfg *config.Config, pool *finalize.Pool, dispatcher *request.Dispatcher) {
	alloc, err := local.New(global, cfg)
	if err != nil {
		log.Printf("process-%d: local.New: %v", index, err)
		return
	}

	mb, err := mailbox.New(global, cfg.MailboxThreshold)
	if err != nil {
		log.Printf("process-%d: mailbox.New: %v", index, err)
		return
	}

	proc := &demoProcess{id: processName(index)}
	collectors := request.Collectors{
		Heap:    collector.NewHeapCollector(alloc, pool),
		Mailbox: collector.NewMailboxCollector(mb),
	}

	const cyclesPerProcess = 4
	for cycle := 0; cycle < cyclesPerProcess; cycle++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		p := alloc.AllocateWithoutPrototype(object.Int{N: int64(cycle)})
		proc.registers = append(proc.registers, p)

		req := request.NewHeapRequest(proc, collectors, cfg.YoungMaxAge, cycle == cyclesPerProcess-1)
		req.ProcessID = proc.id
		dispatcher.Dispatch(proc.id, req)
	}

	alloc.ReturnBlocks()
}

func processName(index int) string {
	return "process-" + string(rune('A'+index))
}
