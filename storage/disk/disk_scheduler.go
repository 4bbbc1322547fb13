package disk

import "sync"

// DiskScheduler serializes access to a DiskManager per page: each page id
// gets its own worker goroutine draining a small buffered queue, so two
// requests for page 7 never interleave on the underlying file, while
// requests for different pages can still run concurrently.
type DiskScheduler struct {
	reqCh       chan DiskReq
	diskManager DiskManager

	pageQueue   map[int64]chan DiskReq
	pageQueueMu sync.Mutex
}

type DiskReq struct {
	PageId int64
	Data   []byte
	Write  bool
	Delete bool
	RespCh chan DiskResp
}

type DiskResp struct {
	Success bool
	Data    []byte
	Err     error
}

func NewScheduler(diskManager DiskManager) *DiskScheduler {
	ds := &DiskScheduler{
		reqCh:       make(chan DiskReq, 100),
		pageQueue:   make(map[int64]chan DiskReq),
		diskManager: diskManager,
	}

	go ds.handleDiskReq()
	return ds
}

// NewRequest builds a read request when isWrite is false and a write
// request carrying data otherwise.
func NewRequest(pageId int64, data []byte, isWrite bool) DiskReq {
	return DiskReq{
		PageId: pageId,
		Data:   data,
		Write:  isWrite,
		RespCh: make(chan DiskResp, 1),
	}
}

func (ds *DiskScheduler) Schedule(req DiskReq) <-chan DiskResp {
	ds.reqCh <- req
	return req.RespCh
}

// ScheduleDelete frees pageId's on-disk slot through the same per-page
// worker queue as reads and writes, so a delete can never interleave
// with an in-flight write for the same page.
func (ds *DiskScheduler) ScheduleDelete(pageId int64) <-chan DiskResp {
	respCh := make(chan DiskResp, 1)
	return ds.Schedule(DiskReq{PageId: pageId, Delete: true, RespCh: respCh})
}

func (ds *DiskScheduler) handleDiskReq() {
	for req := range ds.reqCh {
		ds.pageQueueMu.Lock()
		queue, ok := ds.pageQueue[req.PageId]
		if !ok {
			queue = make(chan DiskReq, 10)
			ds.pageQueue[req.PageId] = queue
		}
		ds.pageQueueMu.Unlock()

		queue <- req

		// !ok means we just created this page's queue, so nobody else is
		// draining it yet — start a worker for it.
		if !ok {
			go ds.pageWorker(req.PageId, queue)
		}
	}
}

func (ds *DiskScheduler) pageWorker(pageId int64, reqQueue chan DiskReq) {
	for {
		select {
		case req := <-reqQueue:
			switch {
			case req.Delete:
				ds.diskManager.DeletePage(req.PageId)
				req.RespCh <- DiskResp{Success: true}
			case req.Write:
				err := ds.diskManager.WritePage(req.PageId, req.Data)
				req.RespCh <- DiskResp{Success: err == nil, Err: err}
			default:
				data, err := ds.diskManager.ReadPage(req.PageId)
				req.RespCh <- DiskResp{Success: err == nil, Data: data, Err: err}
			}

		default:
			// Nothing queued for this page right now. Drop the worker;
			// handleDiskReq will spin up a fresh one if more requests
			// for this page arrive later.
			ds.pageQueueMu.Lock()
			delete(ds.pageQueue, pageId)
			ds.pageQueueMu.Unlock()
			return
		}
	}
}
