// Package crawlers 实现网站镜像的核心流程
//
// # 概述
//
// 一次镜像分为两条路径:
//   - 控制路径: Traverser 深度优先、同步地获取页面,提取引用,分类后分发,改写并保存页面
//   - 下载路径: WorkerPool 中固定数量的worker从 DownloadQueue 取任务,由 Downloader 流式写盘
//
// 两条路径之间只通过 DownloadQueue 通信。已访问集合、路径占用表与统计只在控制路径上读写。
//
// # 核心组件
//
// ## 路径映射 (MapURLToPath)
//
// URL到本地文件路径的纯函数映射,结果总在输出根目录之下:
//
//	https://example.com/          → <root>/index.html
//	https://example.com/about     → <root>/about/index.html
//	https://example.com/s.css?v=2 → <root>/s.css
//
// ## 资源分类 (Classifier)
//
// 按扩展名与可选的白名单(--include-types)决定引用是资源、链接还是忽略。
// rel含nofollow的引用一律忽略。
//
// ## 下载队列与worker池 (DownloadQueue / WorkerPool)
//
// 无界FIFO队列,每个任务在worker处理完后调用TaskDone。关闭时先Join等待队列清空,
// 再为每个worker放入一个停止信号:
//
//	queue := NewDownloadQueue()
//	pool := NewWorkerPool(queue, downloader, threads)
//	pool.Start(ctx)
//
//	traverser := NewTraverser(cfg, fetcher, queue, seedHost)
//	traverser.Run(ctx, seedURL)
//
//	results := pool.Shutdown()
//
// ## 页面获取 (PageFetcher)
//
// 基于Colly的同步获取器,只在控制路径上调用。去重与深度由Traverser负责。
//
// # 错误处理
//
//   - 页面获取失败: 记录日志,该页面放弃,遍历继续
//   - 资源下载失败: 体现在DownloadResult中,不会让worker退出
//   - 超过大小上限/磁盘空间不足: 资源记为Skipped,目标路径不留文件
package crawlers
