// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package common

const (
	// App 应用程序名称
	App = "alpacad"

	// Version 应用程序版本
	Version = "v0.0.1"

	// ReadWriteBlockSize 每次从连接中读取的字节数
	//
	// 与 decoder 允许的最大 token 长度(alpaca.MaxStringViewSize)无关 仅
	// 影响单次系统调用读取的字节数 decoder 自身按照 §6 的 255 字节上限工作
	ReadWriteBlockSize = 4096
)
