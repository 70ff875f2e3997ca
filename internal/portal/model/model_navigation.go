// Copyright 2025 Marina Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

// NavGroup 導覽列中的一個分組及其頁面。
type NavGroup struct {
	Group string   `json:"group"`
	Items []string `json:"items"`
}

// Resource 一個可授權的頁面/功能。
// Key 由 Group 與 Name 以 "__" 拼接而成，由導覽樹靜態決定，運行期不變。
type Resource struct {
	Key   string `json:"key"`
	Group string `json:"group"`
	Name  string `json:"name"`
}

// ResourceKeySeparator 資源鍵的拼接分隔符。
const ResourceKeySeparator = "__"

// ResourceKey 以分組與頁面名構造資源鍵。
func ResourceKey(group, name string) string {
	return group + ResourceKeySeparator + name
}

// 導覽分組名稱，權限等級推導規則按分組特判。
const (
	NavGroupShorePower  = "岸電系統"
	NavGroupAccess      = "門禁管理"
	NavGroupCamera      = "影像監控"
	NavGroupEnvironment = "環境控制"
	NavGroupShipID      = "船隻識別"
	NavGroupBilling     = "支付計費系統"
	NavGroupSelfService = "使用者專區"
	NavGroupSystem      = "系統管理"
)

// 一般使用等級在岸電系統分組下按頁面名子串放行的兩個關鍵字。
const (
	NavItemRealtimeMonitor = "即時監控"
	NavItemHistoryQuery    = "歷史紀錄"
)

// AdminResourceKey 角色權限管理頁自身的資源鍵，管理操作的閘道即查詢此資源。
var AdminResourceKey = ResourceKey(NavGroupSystem, "角色權限")

// DefaultNavigationTree 港區管理後台的靜態導覽樹。
// 順序即前端側邊欄順序，資源目錄由此構建。
var DefaultNavigationTree = []NavGroup{
	{Group: NavGroupShorePower, Items: []string{"即時監控", "歷史紀錄", "電錶管理"}},
	{Group: NavGroupAccess, Items: []string{"門禁狀態", "通行紀錄"}},
	{Group: NavGroupCamera, Items: []string{"即時影像", "錄影回放"}},
	{Group: NavGroupEnvironment, Items: []string{"環境感測", "設備控制"}},
	{Group: NavGroupShipID, Items: []string{"船隻動態", "進出港紀錄"}},
	{Group: NavGroupBilling, Items: []string{"計費項目管理", "帳單查詢", "繳費紀錄"}},
	{Group: NavGroupSelfService, Items: []string{"個人資料", "密碼變更"}},
	{Group: NavGroupSystem, Items: []string{"帳號管理", "角色權限"}},
}
