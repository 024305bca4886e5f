/*
Copyright © 2018 the InMAP authors.
This file is part of mfinput.

mfinput is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

mfinput is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with mfinput.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package mfinput reads and writes the stress-period input files of
// groundwater flow models. Array-valued packages such as
// evapotranspiration (EVT) and recharge (RCH) are held as one Timeline
// per quantity, in which stress periods either supply a new grid array,
// directly or as a sum of parameters, or reuse the array of the
// previous period.
package mfinput

// Version gives the version number.
const Version = "1.0.0"
